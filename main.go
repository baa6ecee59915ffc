package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"strings"

	"github.com/decker502/wavespawn/pkg/components"
	"github.com/decker502/wavespawn/pkg/ecs"
	"github.com/decker502/wavespawn/pkg/embedded"
	"github.com/decker502/wavespawn/pkg/game"
	"github.com/decker502/wavespawn/pkg/systems"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	screenWidth  = 800
	screenHeight = 600

	// intermissionMs 波次之间的间隔
	intermissionMs = 2000.0
)

var (
	seed   = flag.Int64("seed", 0, "随机种子（0 = 当前时间）")
	towers = flag.Int("towers", 3, "初始塔数（+/- 调整）")
	speed  = flag.Float64("speed", 1.0, "时间倍率")
)

// Game 生成预览
// 实现 ebiten.Game 接口，ebiten 的 Update 循环就是生成控制器的 Tick 驱动
type Game struct {
	session *game.Session
	preview *systems.LanePreviewSystem

	towers       int
	waveMs       float64 // 当前波次已经过的时间
	intermission float64 // 距离下一波开始的剩余时间
	leaked       int
	paused       bool
	lastErr      error
}

// Update 每个 tick 推进生成控制器和预览场地
func (g *Game) Update() error {
	g.handleInput()
	if g.paused || g.lastErr != nil {
		return nil
	}

	deltaMs := 1000.0 / float64(ebiten.TPS()) * *speed

	if g.session.State() == systems.SpawnStateIdle {
		g.intermission -= deltaMs
		if g.intermission <= 0 {
			g.startNextWave()
		}
		return nil
	}

	g.waveMs += deltaMs
	spawned, err := g.session.Tick(deltaMs)
	if err != nil {
		g.fail(err)
		return nil
	}
	for _, enemy := range spawned {
		if entityID, ok := g.session.EntityOf(enemy.ID); ok {
			g.preview.Place(entityID, enemy)
		}
	}

	killed, leaked := g.preview.Update(deltaMs/1000, g.towers)
	for _, id := range killed {
		g.session.ResolveEnemy(id)
	}
	for _, id := range leaked {
		g.session.ResolveEnemy(id)
	}
	g.leaked += len(leaked)

	done, err := g.session.TryCompleteWave(g.waveMs, g.towers)
	if err != nil {
		g.fail(err)
		return nil
	}
	if done {
		g.intermission = intermissionMs
	}
	return nil
}

func (g *Game) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
		if g.paused {
			g.session.Pause()
		} else {
			g.session.Resume()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		g.towers++
	}
	if (inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract)) && g.towers > 1 {
		g.towers--
	}
}

func (g *Game) startNextWave() {
	wave, err := g.session.StartNextWave()
	if err != nil {
		g.fail(err)
		return
	}
	g.waveMs = 0
	log.Printf("[Preview] Wave %d started with %d towers", wave, g.towers)
}

func (g *Game) fail(err error) {
	g.lastErr = err
	log.Printf("[Preview] ERROR: %v", err)
}

// Draw 绘制行、敌人和状态文字
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 34, G: 40, B: 49, A: 255})

	cfg := systems.DefaultLanePreviewConfig
	for lane := 0; lane < cfg.LaneCount; lane++ {
		y := float32(cfg.TopY + float64(lane)*cfg.LaneHeight)
		vector.StrokeLine(screen, 0, y, screenWidth, y, 1, color.RGBA{R: 60, G: 70, B: 80, A: 255}, false)
	}
	vector.StrokeLine(screen, float32(cfg.DefenseX), 60, float32(cfg.DefenseX), screenHeight-20, 2,
		color.RGBA{R: 90, G: 160, B: 90, A: 255}, false)

	em := g.session.EntityManager()
	for _, entityID := range ecs.GetEntitiesWith1[*components.PositionComponent](em) {
		drawEnemy(screen, em, entityID)
	}

	ebitenutil.DebugPrint(screen, g.statusText())
}

func drawEnemy(screen *ebiten.Image, em *ecs.EntityManager, entityID ecs.EntityID) {
	pos, _ := ecs.GetComponent[*components.PositionComponent](em, entityID)
	enemy, ok := ecs.GetComponent[*components.Enemy](em, entityID)
	if !ok {
		return
	}

	size := float32(14)
	clr := color.RGBA{R: 200, G: 90, B: 70, A: 255}
	if enemy.IsBoss {
		size = 26
		clr = color.RGBA{R: 170, G: 60, B: 200, A: 255}
	}
	x, y := float32(pos.X), float32(pos.Y)
	vector.DrawFilledRect(screen, x-size/2, y-size/2, size, size, clr, false)

	if health, ok := ecs.GetComponent[*components.HealthComponent](em, entityID); ok {
		vector.DrawFilledRect(screen, x-size/2, y-size/2-5, size*float32(health.Fraction()), 3,
			color.RGBA{R: 80, G: 220, B: 80, A: 255}, false)
	}
}

func (g *Game) statusText() string {
	status := g.session.Status()

	var b strings.Builder
	fmt.Fprintf(&b, "Wave %d  [%s]  spawned %d/%d  next in %.0fms\n",
		status.Wave, status.State, status.Run.CurrentSpawnCount, status.Run.MaxEnemies, status.Run.CountdownRemainingMs)
	fmt.Fprintf(&b, "Active %d  leaked %d  towers %d\n", status.ActiveEnemies, g.leaked, g.towers)
	fmt.Fprintf(&b, "Performance %.2f  difficulty x%.2f  history %d\n",
		status.PerformanceScore, status.DifficultyModifier, len(status.History))
	if g.paused {
		b.WriteString("PAUSED\n")
	}
	if g.lastErr != nil {
		fmt.Fprintf(&b, "ERROR: %v\n", g.lastErr)
	}
	b.WriteString("SPACE pause  +/- towers")
	return b.String()
}

// Layout 返回逻辑屏幕尺寸
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	flag.Parse()

	embedded.Init(dataFS)
	if files, err := embedded.Glob("data/*.yaml"); err == nil {
		log.Printf("[Main] Embedded data files: %v", files)
	}

	session, err := game.NewDefaultSession(*seed, nil)
	if err != nil {
		log.Fatalf("Failed to create spawn session: %v", err)
	}

	g := &Game{
		session: session,
		preview: systems.NewLanePreviewSystem(session.EntityManager(), systems.DefaultLanePreviewConfig),
		towers:  *towers,
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Wave Spawn Preview")

	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
