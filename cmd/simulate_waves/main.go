package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/decker502/wavespawn/internal/debugserver"
	"github.com/decker502/wavespawn/pkg/config"
	"github.com/decker502/wavespawn/pkg/game"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	wavesFlag   = flag.Int("waves", 20, "模拟的波次数")
	seedFlag    = flag.Int64("seed", 1, "随机种子（0 = 当前时间）")
	waveConfig  = flag.String("config", config.DefaultWaveSpawnConfigPath, "波次生成配置文件")
	statsConfig = flag.String("stats", config.DefaultEnemyStatsPath, "敌人属性配置文件")
	stepMs      = flag.Float64("step", 50, "每次 Tick 的步长（毫秒）")
	baseTowers  = flag.Int("towers", 2, "第1波的塔数")
	towersEvery = flag.Int("tower-every", 3, "每隔多少波增加一座塔（0 = 不增加）")
	maxTowers   = flag.Int("max-towers", 10, "塔数上限")
	towerDPS    = flag.Float64("dps", 12, "每座塔的每秒伤害")
	jsonOutput  = flag.Bool("json", false, "以 JSON 输出每波结果")
	serveAddr   = flag.String("serve", "", "调试服务器监听地址（如 :8080），为空时不启动")
	verbose     = flag.Bool("verbose", false, "显示每次生成的详细日志")
)

func main() {
	flag.Parse()

	file, err := config.LoadWaveSpawnConfig(*waveConfig)
	if err != nil {
		log.Fatalf("Failed to load wave config: %v", err)
	}
	stats, err := config.LoadEnemyStats(*statsConfig)
	if err != nil {
		log.Fatalf("Failed to load enemy stats: %v", err)
	}

	reg := prometheus.NewRegistry()
	session, err := game.NewSession(game.SessionOptions{
		WaveConfig: file,
		EnemyStats: stats,
		Seed:       *seedFlag,
		Registerer: reg,
		Verbose:    *verbose,
	})
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var server *debugserver.Server
	if *serveAddr != "" {
		server = debugserver.New(*serveAddr, session, reg)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("Debug server error: %v", err)
			}
		}()
	}

	opts := game.DefaultSimulationOptions()
	opts.Waves = *wavesFlag
	opts.StepMs = *stepMs
	opts.Player = game.PlayerModel{BaseTowers: *baseTowers, TowersEvery: *towersEvery, MaxTowers: *maxTowers}
	opts.Field.TowerDPS = *towerDPS

	if !*jsonOutput {
		fmt.Printf("%-5s %-6s %-8s %-6s %-7s %-7s %-9s %-7s %-7s %-8s\n",
			"WAVE", "TOWERS", "SPAWNED", "BOSSES", "KILLED", "LEAKED", "TIME(s)", "SAMPLE", "SCORE", "MODIFIER")
	}
	encoder := json.NewEncoder(os.Stdout)

	_, err = game.NewSimulator(session, opts).Run(ctx, func(r game.WaveResult) {
		if *jsonOutput {
			if err := encoder.Encode(r); err != nil {
				log.Printf("Failed to encode result: %v", err)
			}
			return
		}
		fmt.Printf("%-5d %-6d %-8d %-6d %-7d %-7d %-9.1f %-7.3f %-7.3f %-8.3f\n",
			r.Wave, r.Towers, r.Spawned, r.Bosses, r.Killed, r.Leaked,
			r.CompletionMs/1000, r.SampleScore, r.PerformanceScore, r.DifficultyModifier)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Simulation stopped: %v", err)
	}

	if server == nil {
		return
	}

	// 模拟结束后继续提供调试接口，直到收到中断信号
	if ctx.Err() == nil {
		log.Printf("Simulation finished, debug server still running on %s (Ctrl+C to exit)", *serveAddr)
		<-ctx.Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}
