package translation

import (
	"crypto/md5"
	"encoding/hex"
	"math/rand"
	"strconv"
)

// RequestSigner produces the per-request signature the Baidu endpoint
// expects: md5(appid + query + salt + secret), with a fresh salt each call.
type RequestSigner struct {
	appID  string
	secret string
}

func NewRequestSigner(appID, secret string) *RequestSigner {
	return &RequestSigner{appID: appID, secret: secret}
}

func (s *RequestSigner) AppID() string {
	return s.appID
}

// Sign returns the salt and signature for one request payload.
func (s *RequestSigner) Sign(query string) (salt, sign string) {
	salt = strconv.Itoa(10000 + rand.Intn(90000))
	sum := md5.Sum([]byte(s.appID + query + salt + s.secret))
	return salt, hex.EncodeToString(sum[:])
}
