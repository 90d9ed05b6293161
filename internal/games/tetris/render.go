package tetris

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/vovakirdan/tui-tetris/internal/core"
	"github.com/vovakirdan/tui-tetris/internal/games/tetris/engine"
)

const (
	cellWidth  = 2  // Columns per board cell
	panelWidth = 18 // Side panel including its border
	panelGap   = 2
	previewH   = 4 // Preview box height including border
)

var pieceColors = map[engine.Kind]core.Color{
	engine.KindI: core.ColorCyan,
	engine.KindJ: core.ColorBlue,
	engine.KindL: core.ColorOrange,
	engine.KindO: core.ColorYellow,
	engine.KindS: core.ColorGreen,
	engine.KindT: core.ColorMagenta,
	engine.KindZ: core.ColorRed,
}

func cellColor(c engine.Cell) core.Color {
	for _, k := range engine.AllKinds {
		if k.Color() == c {
			return pieceColors[k]
		}
	}
	return core.ColorWhite
}

func (g *Game) boardSize() (w, h int) {
	return g.cfg.Board.Width*cellWidth + 2, g.cfg.Board.Height + 2
}

// minSize is the board, the side panel and a title row.
func (g *Game) minSize() (int, int) {
	bw, bh := g.boardSize()
	return bw + panelGap + panelWidth, bh + 1
}

// layout centers board and panel; the title goes on the row above the board.
func (g *Game) layout() (boardX, boardY, panelX int) {
	bw, bh := g.boardSize()
	total := bw + panelGap + panelWidth
	boardX = core.Max((g.screenW-total)/2, 0)
	boardY = core.Max((g.screenH-bh)/2, 1)
	return boardX, boardY, boardX + bw + panelGap
}

// Render draws the game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.tooSmall {
		g.renderTooSmall(dst)
		return
	}

	bx, by, px := g.layout()
	bw, bh := g.boardSize()

	title := "TETRIS  " + g.session.Mode().String()
	dst.DrawTextColor(bx+(bw-utf8.RuneCountInString(title))/2, by-1, title, core.ColorBrightWhite)

	g.renderBoard(dst, bx, by)
	g.renderPanel(dst, px, by)

	switch {
	case g.session.IsGameOver():
		g.renderGameOver(dst, bx, by)
	case g.paused:
		g.renderCenteredLines(dst, bx, by, []string{"PAUSED", "", "P to resume"}, core.ColorBrightYellow)
	}

	if help := "←→ move  ↑ rotate  ↓ soft  SPACE drop  C hold  P pause  N new"; by+bh < g.screenH {
		dst.DrawTextCentered(by+bh, help, core.ColorGray)
	}
}

func (g *Game) renderTooSmall(dst *core.Screen) {
	minW, minH := g.minSize()
	y := g.screenH / 2
	dst.DrawTextCentered(y, "Window too small", core.ColorDefault)
	dst.DrawTextCentered(y+1, fmt.Sprintf("Need at least %dx%d", minW, minH), core.ColorGray)
}

// putCell draws board cell (x, y) as a two-column glyph.
func putCell(dst *core.Screen, bx, by, x, y int, glyph string, c core.Color) {
	dst.DrawTextColor(bx+1+x*cellWidth, by+1+y, glyph, c)
}

func (g *Game) renderBoard(dst *core.Screen, bx, by int) {
	bw, bh := g.boardSize()
	dst.DrawBox(core.NewRect(bx, by, bw, bh), core.ColorGray)

	board := g.session.Board()
	for y, row := range board {
		for x, c := range row {
			if c.Filled() {
				putCell(dst, bx, by, x, y, "██", cellColor(c))
			} else {
				putCell(dst, bx, by, x, y, " .", core.ColorGray)
			}
		}
	}

	v := g.session.View()
	if v.Active == nil {
		return
	}
	if g.cfg.Display.Ghost && v.GhostY > v.Y {
		drawShape(v.Active, func(x, y int, _ engine.Cell) {
			if board.At(v.X+x, v.GhostY+y).Filled() {
				return
			}
			putCell(dst, bx, by, v.X+x, v.GhostY+y, "░░", core.ColorGray)
		})
	}
	drawShape(v.Active, func(x, y int, c engine.Cell) {
		if v.Y+y >= 0 {
			putCell(dst, bx, by, v.X+x, v.Y+y, "██", cellColor(c))
		}
	})
}

func drawShape(m engine.Matrix, put func(x, y int, c engine.Cell)) {
	for y, row := range m {
		for x, c := range row {
			if c.Filled() {
				put(x, y, c)
			}
		}
	}
}

func (g *Game) renderPreview(dst *core.Screen, x, y int, label string, m engine.Matrix, dim bool) {
	dst.DrawBox(core.NewRect(x, y, panelWidth, previewH), core.ColorGray)
	dst.DrawTextColor(x+2, y, " "+label+" ", core.ColorWhite)
	if m == nil {
		return
	}
	ox := x + (panelWidth-m.Width()*cellWidth)/2
	drawShape(m, func(cx, cy int, c engine.Cell) {
		color := cellColor(c)
		if dim {
			color = core.ColorGray
		}
		if cy < previewH-2 {
			dst.DrawTextColor(ox+cx*cellWidth, y+1+cy, "██", color)
		}
	})
}

func (g *Game) renderPanel(dst *core.Screen, px, py int) {
	v := g.session.View()
	g.renderPreview(dst, px, py, "NEXT", v.Next, false)
	g.renderPreview(dst, px, py+previewH, "HOLD", v.Hold, !v.HoldAvailable)

	sc := g.session.Score()
	lines := []string{
		fmt.Sprintf("Score  %d", sc.Score),
		fmt.Sprintf("Level  %d", sc.Level),
		fmt.Sprintf("Lines  %d", sc.TotalLines),
	}
	switch g.session.Mode().Kind {
	case engine.ModeLineGoal:
		lines = append(lines, fmt.Sprintf("Left   %d", g.session.LinesRemaining()))
		lines = append(lines, "Time   "+formatClock(g.session.Elapsed()))
	case engine.ModeTimeBoxed:
		lines = append(lines, "Time   "+formatClock(g.session.TimeRemaining()))
	default:
		lines = append(lines, "Time   "+formatClock(g.session.Elapsed()))
	}
	if sc.Combo > 1 {
		lines = append(lines, fmt.Sprintf("Combo  %d", sc.Combo))
	}
	if sc.BackToBackActive() {
		lines = append(lines, fmt.Sprintf("B2B    x%d", sc.BackToBack))
	}

	y := py + 2*previewH + 1
	for i, l := range lines {
		dst.DrawText(px+1, y+i, l)
	}
	if g.notice != "" {
		dst.DrawTextColor(px+1, y+len(lines)+1, g.notice, core.ColorBrightYellow)
	}
}

func (g *Game) renderGameOver(dst *core.Screen, bx, by int) {
	header := "GAME OVER"
	switch g.session.EndReason() {
	case engine.EndGoalReached:
		header = "GOAL REACHED"
	case engine.EndTimeUp:
		header = "TIME UP"
	}
	sc := g.session.Score()
	g.renderCenteredLines(dst, bx, by, []string{
		header,
		"",
		fmt.Sprintf("Score %d", sc.Score),
		fmt.Sprintf("Level %d", sc.Level),
		fmt.Sprintf("Lines %d", sc.TotalLines),
		"Time  " + formatClock(g.session.Elapsed()),
		"",
		"R restart",
		"B menu",
	}, core.ColorBrightRed)
}

// renderCenteredLines blanks a band across the board and writes lines in it.
func (g *Game) renderCenteredLines(dst *core.Screen, bx, by int, lines []string, c core.Color) {
	bw, bh := g.boardSize()
	top := by + (bh-len(lines))/2
	dst.DrawRect(core.NewRect(bx+1, top-1, bw-2, len(lines)+2), ' ', core.ColorDefault)
	for i, l := range lines {
		color := core.ColorDefault
		if i == 0 {
			color = c
		}
		dst.DrawTextColor(bx+(bw-utf8.RuneCountInString(l))/2, top+i, l, color)
	}
}

// formatClock renders a duration as mm:ss.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
