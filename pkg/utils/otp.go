package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateOTP 生成6位数字验证码
func GenerateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand 不可用时退回固定范围下界
		return "100000"
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}
