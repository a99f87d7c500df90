package translation

import (
	"sort"
	"strings"

	"github.com/sayaxia/srt-transfer/internal/language"
)

type LanguageOption struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Native string `json:"native,omitempty"`
}

type languageLabel struct {
	english string
	chinese string
}

var translationLanguageLabels = map[string]languageLabel{
	"ar": {english: "Arabic", chinese: "阿拉伯语"},
	"de": {english: "German", chinese: "德语"},
	"en": {english: "English", chinese: "英语"},
	"es": {english: "Spanish", chinese: "西班牙语"},
	"fr": {english: "French", chinese: "法语"},
	"id": {english: "Indonesian", chinese: "印度尼西亚语"},
	"it": {english: "Italian", chinese: "意大利语"},
	"ja": {english: "Japanese", chinese: "日语"},
	"ko": {english: "Korean", chinese: "韩语"},
	"pl": {english: "Polish", chinese: "波兰语"},
	"pt": {english: "Portuguese", chinese: "葡萄牙语"},
	"ru": {english: "Russian", chinese: "俄语"},
	"th": {english: "Thai", chinese: "泰语"},
	"tr": {english: "Turkish", chinese: "土耳其语"},
	"vi": {english: "Vietnamese", chinese: "越南语"},
	"zh": {english: "Chinese", chinese: "中文"},
}

func SupportedTranslationLanguageCodes() []string {
	codes := make([]string, 0, len(translationLanguageLabels))
	for code := range translationLanguageLabels {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// TargetLanguageOptions lists selectable target languages for API consumers.
func TargetLanguageOptions() []LanguageOption {
	options := make([]LanguageOption, 0, len(translationLanguageLabels))
	for _, code := range SupportedTranslationLanguageCodes() {
		labels := translationLanguageLabels[code]
		options = append(options, LanguageOption{
			Code:   code,
			Label:  labels.english,
			Native: labels.chinese,
		})
	}
	return options
}

// SourceAuto is the provider-side wildcard for automatic source detection.
const SourceAuto = "auto"

func normalizeLangCode(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == SourceAuto {
		return SourceAuto
	}
	return language.NormalizeCode(trimmed)
}

func targetLanguageLabel(lang string) languageLabel {
	normalized := normalizeLangCode(lang)
	if labels, ok := translationLanguageLabels[normalized]; ok {
		return labels
	}
	fallback := strings.TrimSpace(lang)
	if fallback == "" {
		fallback = "English"
	}
	return languageLabel{english: fallback, chinese: fallback}
}

func isChineseLanguage(lang string) bool {
	return normalizeLangCode(lang) == "zh"
}
