package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/decker502/wavespawn/pkg/config"
)

var (
	waveConfig  = flag.String("config", config.DefaultWaveSpawnConfigPath, "波次生成配置文件")
	statsConfig = flag.String("stats", config.DefaultEnemyStatsPath, "敌人属性配置文件")
	probeWaves  = flag.Int("probe", 50, "逐波检查配置解析的最大波次")
)

func main() {
	flag.Parse()

	file, err := config.LoadWaveSpawnConfig(*waveConfig)
	if err != nil {
		fmt.Printf("❌ 波次配置无效: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ 波次配置格式正确: %d 个区间\n", len(file.Waves))

	registry, err := config.NewWaveConfigRegistry(file)
	if err != nil {
		fmt.Printf("❌ 波次区间无效: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ 生成间隔下限 %.0fms，超出范围回退: %v\n", registry.MinSpawnDelayMs(), registry.FallbackToHighest())

	stats, err := config.LoadEnemyStats(*statsConfig)
	if err != nil {
		fmt.Printf("❌ 敌人属性配置无效: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ 敌人属性配置格式正确: %d 种敌人\n", len(stats.Enemies))

	failed := false

	if missing := stats.MissingStats(file.EnemyTypes()); len(missing) > 0 {
		fmt.Printf("❌ 以下敌人类型没有基础属性（将使用默认值）: %v\n", missing)
		failed = true
	} else {
		fmt.Printf("✅ 所有引用的敌人类型都有基础属性\n")
	}

	unresolved := 0
	for wave := 1; wave <= *probeWaves; wave++ {
		if _, err := registry.GetConfig(wave); err != nil {
			fmt.Printf("❌ 第 %d 波: %v\n", wave, err)
			unresolved++
		}
	}
	if unresolved == 0 {
		fmt.Printf("✅ 第 1-%d 波都有可用配置\n", *probeWaves)
	} else {
		failed = true
	}

	if failed {
		os.Exit(1)
	}
}
