// Package unsubtoken выпускает и проверяет токены отписки.
//
// Токен — это HMAC-SHA256 от идентификатора подписчика с общим секретом
// в качестве ключа, закодированный в hex. Токен детерминирован и нигде
// не хранится: он восстанавливается из id и текущего секрета, поэтому
// ротация секрета мгновенно отзывает все выданные ссылки.
package unsubtoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Issue возвращает токен отписки для подписчика.
// Одинаковые id и secret всегда дают одинаковый токен.
func Issue(subscriberID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(subscriberID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify проверяет токен, сравнивая его с ожидаемым за константное время.
// На любом несовпадении или некорректном входе возвращает false, не паникует.
func Verify(subscriberID, token, secret string) bool {
	got, err := hex.DecodeString(token)
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(Issue(subscriberID, secret))
	if err != nil {
		return false
	}
	return hmac.Equal(got, want)
}
