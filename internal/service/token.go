package service

import (
	"fmt"
	"strings"

	"github.com/realcpa-hub/internal/constants"

	"github.com/google/uuid"
)

// TokenGenerator 追踪令牌生成策略
type TokenGenerator interface {
	Generate(affiliateID, offerID uint) string
}

// DeterministicTokenGenerator 按 (affiliate, offer) 派生固定令牌，同一组合重复生成结果一致
type DeterministicTokenGenerator struct{}

// Generate 生成 tk-{affiliate:08d}-{offer:08d}
func (DeterministicTokenGenerator) Generate(affiliateID, offerID uint) string {
	return fmt.Sprintf("tk-%08d-%08d", affiliateID, offerID)
}

// RandomTokenGenerator 随机令牌
type RandomTokenGenerator struct{}

// Generate 生成 tk- + 24 位十六进制
func (RandomTokenGenerator) Generate(uint, uint) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "tk-" + raw[:24]
}

// NewTokenGenerator 按配置选择策略，未知值回退为 deterministic
func NewTokenGenerator(strategy string) TokenGenerator {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case constants.TokenStrategyRandom:
		return RandomTokenGenerator{}
	default:
		return DeterministicTokenGenerator{}
	}
}
