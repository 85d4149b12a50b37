package game

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/Garsondee/Crater/internal/sim"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	colBackground = color.RGBA{R: 12, G: 12, B: 18, A: 255}
	colSky        = color.RGBA{R: 135, G: 206, B: 235, A: 255}
	colGrass      = color.RGBA{R: 76, G: 153, B: 0, A: 255}
	colDirt       = color.RGBA{R: 139, G: 90, B: 43, A: 255}
	colAim        = color.RGBA{R: 255, G: 255, B: 255, A: 128}
	colPower      = color.RGBA{R: 230, G: 40, B: 40, A: 255}
	colHealthBack = color.RGBA{R: 120, G: 0, B: 0, A: 255}
	colHealth     = color.RGBA{R: 40, G: 220, B: 40, A: 255}
	colPanel      = color.RGBA{R: 10, G: 10, B: 16, A: 200}
	colPanelEdge  = color.RGBA{R: 70, G: 70, B: 100, A: 200}
)

const (
	aimLength    = 30
	healthBarW   = 20
	healthBarH   = 4
	powerBarW    = 30
	powerBarH    = 5
	hudLineH     = 15
	hudPad       = 6
	windGaugeW   = 160
	windGaugeH   = 8
	bannerHeight = 60
)

// terrainPixels rasterises the terrain mask into RGBA bytes. Air is left
// transparent so the sky fill shows through.
func terrainPixels(t *sim.Terrain, dst []byte) []byte {
	w, h := t.Width(), t.Height()
	if len(dst) != w*h*4 {
		dst = make([]byte, w*h*4)
	}
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			i := (row*w + col) * 4
			var c color.RGBA
			switch t.MaterialAt(col, row) {
			case sim.MaterialGrass:
				c = colGrass
			case sim.MaterialDirt:
				// darken with depth for a little texture
				shade := uint8(min(40, row/18))
				c = color.RGBA{R: colDirt.R - shade, G: colDirt.G - shade/2, B: colDirt.B, A: 255}
			}
			dst[i], dst[i+1], dst[i+2], dst[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return dst
}

func (g *Game) refreshTerrain(snap sim.Snapshot) {
	if g.terrainImg == nil {
		g.terrainImg = ebiten.NewImage(g.fieldW, g.fieldH)
	}
	if snap.TerrainRevision == g.terrainRev {
		return
	}
	g.terrainPix = terrainPixels(snap.Terrain, g.terrainPix)
	g.terrainImg.WritePixels(g.terrainPix)
	g.terrainRev = snap.TerrainRevision
}

func drawText(dst *ebiten.Image, face text.Face, s string, x, y int, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, face, op)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colBackground)
	snap := g.match.Snapshot()

	ox, oy := float32(g.offX), float32(g.offY)
	vector.FillRect(screen, ox, oy, float32(g.fieldW), float32(g.fieldH), colSky, false)
	g.refreshTerrain(snap)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(g.offX), float64(g.offY))
	screen.DrawImage(g.terrainImg, op)
	vector.StrokeRect(screen, ox-1, oy-1, float32(g.fieldW)+2, float32(g.fieldH)+2, 2.0, colPanelEdge, false)

	for _, e := range snap.Entities {
		g.drawEntity(screen, e)
	}
	for _, p := range snap.Projectiles {
		clr := color.RGBA{R: 20, G: 20, B: 20, A: 255}
		if p.Kind == sim.KindBouncing {
			clr = color.RGBA{R: 30, G: 90, B: 30, A: 255}
		}
		vector.FillCircle(screen, ox+float32(p.X), oy+float32(p.Y), float32(p.Radius), clr, true)
	}
	g.drawAim(screen, snap)

	g.feed.Draw(screen, g.face, g.offX+g.fieldW+borderWidth, g.height)
	g.drawHUD(screen, snap)
	if snap.Over {
		g.drawBanner(screen, snap)
	}
}

// drawEntity draws a capsule body with an eye on the facing side and a
// health bar above.
func (g *Game) drawEntity(screen *ebiten.Image, e sim.EntityView) {
	if e.Dead {
		return
	}
	x := float32(g.offX) + float32(e.X)
	y := float32(g.offY) + float32(e.Y)
	body := teamColor(e.Team)
	vector.FillCircle(screen, x, y-5, 5, body, true)
	vector.FillRect(screen, x-5, y-5, 10, 10, body, false)
	vector.FillCircle(screen, x, y+5, 5, body, true)

	f := float32(e.Facing)
	vector.FillCircle(screen, x+3*f, y-5, 2, color.White, true)
	vector.FillCircle(screen, x+4*f, y-5, 0.8, color.Black, true)

	vector.FillRect(screen, x-healthBarW/2, y-20, healthBarW, healthBarH, colHealthBack, false)
	hp := float32(e.Health) / 100
	vector.FillRect(screen, x-healthBarW/2, y-20, healthBarW*hp, healthBarH, colHealth, false)

	if e.Active {
		vector.StrokeCircle(screen, x, y, float32(e.Radius)+4, 1, color.White, true)
	}
}

// drawAim shows the aim line and charge meter for the active combatant.
func (g *Game) drawAim(screen *ebiten.Image, snap sim.Snapshot) {
	if snap.Over || snap.State != sim.StateInput {
		return
	}
	var active *sim.EntityView
	for i := range snap.Entities {
		if snap.Entities[i].ID == snap.ActiveID {
			active = &snap.Entities[i]
		}
	}
	if active == nil || active.Dead {
		return
	}
	x := float32(g.offX) + float32(active.X)
	y := float32(g.offY) + float32(active.Y)
	ax := float32(math.Cos(snap.Aim) * aimLength)
	ay := float32(math.Sin(snap.Aim) * aimLength)
	vector.StrokeLine(screen, x, y, x+ax, y+ay, 2, colAim, true)

	name := snap.Weapon.String()
	drawText(screen, g.face, name, int(x)-len(name)*7/2, int(y)-44, color.White)

	if snap.Charging && snap.MaxPower > 0 {
		pct := float32(snap.Power / snap.MaxPower)
		vector.FillRect(screen, x-powerBarW/2, y-30, powerBarW*pct, powerBarH, colPower, false)
		vector.StrokeRect(screen, x-powerBarW/2, y-30, powerBarW, powerBarH, 1, color.Black, false)
	}
}

// HUDLines is the text block in the top-left corner of the field.
func HUDLines(snap sim.Snapshot, speed float64, help bool) []string {
	team := fmt.Sprintf("%s team", strings.ToUpper(snap.ActiveTeam.String()))
	if !snap.ActiveHuman {
		team += " (AI)"
	}
	switch snap.State {
	case sim.StateRetreat:
		team += " (Retreat)"
	case sim.StateFiring:
		team += " (Firing)"
	}

	timer := "--"
	switch snap.State {
	case sim.StateInput:
		timer = fmt.Sprintf("%d", int(math.Ceil(snap.TurnTimer)))
	case sim.StateRetreat:
		timer = fmt.Sprintf("%d", int(math.Ceil(snap.RetreatTimer)))
	}

	speedStr := fmt.Sprintf("%gx", speed)
	if speed == 0 {
		speedStr = "PAUSED"
	}

	lines := []string{
		team,
		fmt.Sprintf("Time: %s   Weapon: %s", timer, snap.Weapon),
		fmt.Sprintf("Wind: %+.0f", snap.Wind),
		fmt.Sprintf("Sim: %s", speedStr),
	}
	if help {
		lines = append(lines,
			"A/D move  Space jump  mouse aim",
			"hold LMB charge  1/2 weapon",
			"P pause  ,/. speed  R restart",
			"C copy report  H hide help",
		)
	}
	return lines
}

func (g *Game) drawHUD(screen *ebiten.Image, snap sim.Snapshot) {
	lines := HUDLines(snap, g.simSpeed, g.showHelp)
	if g.noticeLeft > 0 {
		lines = append(lines, g.notice)
	}

	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len(l))
	}
	bx := float32(g.offX + 8)
	by := float32(g.offY + 8)
	boxW := float32(max(maxLen*7, windGaugeW) + hudPad*2)
	boxH := float32(len(lines)*hudLineH + windGaugeH + hudPad*3)
	vector.FillRect(screen, bx, by, boxW, boxH, colPanel, false)
	vector.StrokeRect(screen, bx, by, boxW, boxH, 1, colPanelEdge, false)

	for i, line := range lines {
		clr := color.Color(color.White)
		if i == 0 {
			clr = teamColor(snap.ActiveTeam)
		}
		drawText(screen, g.face, line, int(bx)+hudPad, int(by)+hudPad+i*hudLineH, clr)
	}

	// Wind gauge: a bar growing from the centre toward the downwind side.
	gx := bx + hudPad
	gy := by + boxH - hudPad - windGaugeH
	vector.FillRect(screen, gx, gy, windGaugeW, windGaugeH, color.RGBA{R: 40, G: 40, B: 50, A: 255}, false)
	if snap.MaxWind > 0 {
		half := float32(windGaugeW) / 2
		frac := float32(snap.Wind / snap.MaxWind)
		if frac >= 0 {
			vector.FillRect(screen, gx+half, gy, half*frac, windGaugeH, color.RGBA{R: 120, G: 200, B: 255, A: 255}, false)
		} else {
			vector.FillRect(screen, gx+half+half*frac, gy, -half*frac, windGaugeH, color.RGBA{R: 120, G: 200, B: 255, A: 255}, false)
		}
	}
	vector.StrokeLine(screen, gx+windGaugeW/2, gy-2, gx+windGaugeW/2, gy+windGaugeH+2, 1, color.White, false)
}

// BannerText is the game-over headline.
func BannerText(snap sim.Snapshot) string {
	if snap.Draw || !snap.HasWinner {
		return "DRAW - press R for a new match"
	}
	return fmt.Sprintf("%s TEAM WINS - press R for a new match", strings.ToUpper(snap.Winner.String()))
}

func (g *Game) drawBanner(screen *ebiten.Image, snap sim.Snapshot) {
	msg := BannerText(snap)
	cy := float32(g.offY + g.fieldH/2 - bannerHeight/2)
	vector.FillRect(screen, float32(g.offX), cy, float32(g.fieldW), bannerHeight, color.RGBA{A: 180}, false)
	clr := color.Color(color.White)
	if snap.HasWinner {
		clr = teamColor(snap.Winner)
	}
	drawText(screen, g.face, msg, g.offX+(g.fieldW-len(msg)*7)/2, int(cy)+bannerHeight/2-7, clr)
}
