package events

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Signer 为出站 webhook 请求生成防篡改签名。待签串固定为
// 大写方法、路径、unix 秒、随机数与 sha256(请求体) 的换行拼接，
// 接收端按同样顺序复算即可校验。
type Signer struct {
	secret []byte
}

// NewSigner 创建签名器
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Signature 一次请求的签名三元组，经 X-Signature/X-Timestamp/X-Nonce 头传递
type Signature struct {
	Value     string
	Timestamp int64
	Nonce     string
}

// Sign 对一次请求体签名
func (s *Signer) Sign(method, path string, body []byte) Signature {
	ts := time.Now().Unix()
	nonce := newNonce()
	return Signature{
		Value:     s.compute(method, path, ts, nonce, body),
		Timestamp: ts,
		Nonce:     nonce,
	}
}

// Verify 复算并比较签名，接收端与测试共用
func (s *Signer) Verify(method, path string, ts int64, nonce string, body []byte, sig string) bool {
	want := s.compute(method, path, ts, nonce, body)
	return hmac.Equal([]byte(want), []byte(sig))
}

func (s *Signer) compute(method, path string, ts int64, nonce string, body []byte) string {
	sum := sha256.Sum256(body)
	canonical := fmt.Sprintf("%s\n%s\n%d\n%s\n%s",
		strings.ToUpper(method), path, ts, nonce, hex.EncodeToString(sum[:]))
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}

// newNonce 8 字节随机数的 hex 表示
func newNonce() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		binary.BigEndian.PutUint64(b[:], uint64(time.Now().UnixNano()))
	}
	return hex.EncodeToString(b[:])
}
