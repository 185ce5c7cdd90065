package rng

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// Generator 可序列化的伪随机数生成器
// 基于PCG32：全部内部状态仅为两个64位整数，
// 可编码成不透明令牌，恢复后延续完全相同的输出序列。
type Generator struct {
	state uint64
	inc   uint64
}

const (
	pcgMultiplier = 6364136223846793005
	defaultStream = 1442695040888963407
	tokenVersion  = "v1"
)

// NewSeeded 以指定种子创建生成器
func NewSeeded(seed uint64) *Generator {
	g := &Generator{inc: defaultStream | 1}
	g.state = 0
	g.next()
	g.state += seed
	g.next()
	return g
}

// New 创建随机种子的生成器
func New() *Generator {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return NewSeeded(uint64(time.Now().UnixNano()))
	}
	return NewSeeded(binary.LittleEndian.Uint64(buf[:]))
}

// next PCG32核心步进
func (g *Generator) next() uint32 {
	old := g.state
	g.state = old*pcgMultiplier + g.inc
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := uint32(old >> 59)
	return (xorshifted >> rot) | (xorshifted << ((32 - rot) & 31))
}

// Float64 返回[0,1)区间的浮点数
func (g *Generator) Float64() float64 {
	return float64(g.next()) / (1 << 32)
}

// IntRange 返回[min,max]闭区间内的整数
func (g *Generator) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	span := uint64(max-min) + 1
	return min + int(uint64(g.next())%span)
}

// Intn 返回[0,n)区间内的整数
func (g *Generator) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(uint64(g.next()) % uint64(n))
}

// Token 将生成器内部状态编码为不透明令牌
func (g *Generator) Token() string {
	return fmt.Sprintf("%s.%016x.%016x", tokenVersion, g.state, g.inc)
}

// FromToken 从令牌恢复生成器，令牌不合法时返回错误
func FromToken(token string) (*Generator, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] != tokenVersion {
		return nil, fmt.Errorf("无法识别的随机数令牌: %q", token)
	}
	var state, inc uint64
	if _, err := fmt.Sscanf(parts[1], "%016x", &state); err != nil {
		return nil, fmt.Errorf("随机数令牌状态段损坏: %w", err)
	}
	if _, err := fmt.Sscanf(parts[2], "%016x", &inc); err != nil {
		return nil, fmt.Errorf("随机数令牌流段损坏: %w", err)
	}
	if inc&1 == 0 {
		return nil, fmt.Errorf("随机数令牌流段必须为奇数")
	}
	return &Generator{state: state, inc: inc}, nil
}
