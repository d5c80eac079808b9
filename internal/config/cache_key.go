package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// RevokedAccessKey returns the denylist key for a logged-out access token JTI.
// The entry lives only until the token would have expired anyway.
func (r *CacheKeyStruct) RevokedAccessKey(jti string) string {
	return fmt.Sprintf("revoked:access:%s", jti)
}

// LoginThrottleKey returns the failed-login counter key for an email.
func (r *CacheKeyStruct) LoginThrottleKey(email string) string {
	return fmt.Sprintf("throttle:login:%s", email)
}

var CacheKey = NewCacheKeyStruct()
