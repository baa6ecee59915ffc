package config

import (
	"errors"
	"fmt"
	"log"
	"sort"
)

// ErrNoWaveConfig 请求的波次没有可用的生成配置（且无法回退）
var ErrNoWaveConfig = errors.New("no wave spawn config")

// WaveConfigRegistry 波次配置注册表
//
// 加载后不可变，可在多个波次之间只读共享。
// 解析规则：
//  1. 选择区间覆盖该波次的配置
//  2. 超出最后一个区间的波次回退到最高区间（FallbackToHighest 开启时）
//
// 回退保证极后期波次的难度不会"重置"回早期配置。
type WaveConfigRegistry struct {
	entries           []WaveSpawnConfig // 按 FromWave 升序
	minSpawnDelayMs   float64
	fallbackToHighest bool
}

// NewWaveConfigRegistry 根据配置文件创建注册表
//
// 代码中直接构造的配置同样会填充默认值并校验；调用方的 file 不会被修改。
// 字段无效、区间重叠或无上限区间不在最后时返回错误
func NewWaveConfigRegistry(file *WaveSpawnFile) (*WaveConfigRegistry, error) {
	if file == nil || len(file.Waves) == 0 {
		return nil, fmt.Errorf("wave spawn config is empty")
	}

	file = cloneWaveSpawnFile(file)
	applyWaveSpawnDefaults(file)
	if err := validateWaveSpawnConfig(file); err != nil {
		return nil, fmt.Errorf("invalid wave spawn config: %w", err)
	}

	entries := file.Waves
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].FromWave < entries[j].FromWave
	})

	for i := 1; i < len(entries); i++ {
		prev := entries[i-1]
		if prev.ToWave == 0 {
			return nil, fmt.Errorf("open-ended wave range starting at %d must be the last range", prev.FromWave)
		}
		if entries[i].FromWave <= prev.ToWave {
			return nil, fmt.Errorf("wave ranges overlap: [%d,%d] and [%d,%d]",
				prev.FromWave, prev.ToWave, entries[i].FromWave, entries[i].ToWave)
		}
	}

	minDelay := file.MinSpawnDelayMs
	if minDelay <= 0 {
		minDelay = DefaultMinSpawnDelayMs
	}
	fallback := true
	if file.FallbackToHighest != nil {
		fallback = *file.FallbackToHighest
	}

	log.Printf("[WaveConfigRegistry] Loaded %d wave ranges (minSpawnDelay=%.0fms, fallbackToHighest=%v)",
		len(entries), minDelay, fallback)

	return &WaveConfigRegistry{
		entries:           entries,
		minSpawnDelayMs:   minDelay,
		fallbackToHighest: fallback,
	}, nil
}

// GetConfig 获取指定波次的生成配置
//
// 返回的指针指向注册表内部数据，调用方不得修改
func (r *WaveConfigRegistry) GetConfig(wave int) (*WaveSpawnConfig, error) {
	if wave < 1 {
		return nil, fmt.Errorf("wave %d: %w", wave, ErrNoWaveConfig)
	}

	for i := range r.entries {
		if r.entries[i].Covers(wave) {
			return &r.entries[i], nil
		}
	}

	highest := &r.entries[len(r.entries)-1]
	if r.fallbackToHighest && wave > highest.FromWave {
		return highest, nil
	}

	return nil, fmt.Errorf("wave %d: %w", wave, ErrNoWaveConfig)
}

// MinSpawnDelayMs 生成间隔下限（毫秒）
func (r *WaveConfigRegistry) MinSpawnDelayMs() float64 {
	return r.minSpawnDelayMs
}

// FallbackToHighest 是否对超出范围的波次回退到最高区间
func (r *WaveConfigRegistry) FallbackToHighest() bool {
	return r.fallbackToHighest
}

// Len 配置区间数量
func (r *WaveConfigRegistry) Len() int {
	return len(r.entries)
}

// cloneWaveSpawnFile 深拷贝配置，注册表持有的数据与调用方隔离
func cloneWaveSpawnFile(file *WaveSpawnFile) *WaveSpawnFile {
	clone := *file
	if file.FallbackToHighest != nil {
		fallback := *file.FallbackToHighest
		clone.FallbackToHighest = &fallback
	}

	clone.Waves = make([]WaveSpawnConfig, len(file.Waves))
	for i, wave := range file.Waves {
		wave.EnemyComposition = append([]EnemyCompositionEntry(nil), wave.EnemyComposition...)
		if wave.BossConfig != nil {
			boss := *wave.BossConfig
			boss.BossTypes = append([]string(nil), boss.BossTypes...)
			wave.BossConfig = &boss
		}
		clone.Waves[i] = wave
	}
	return &clone
}
