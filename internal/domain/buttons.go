package domain

// Button кнопка с подписью и командным токеном
type Button struct {
	Label  string
	Action string
}

// ButtonGrid сетка кнопок, строки × кнопки
type ButtonGrid [][]Button

// ChunkButtons раскладывает кнопки по строкам фиксированной ширины
func ChunkButtons(buttons []Button, perRow int) ButtonGrid {
	if perRow <= 0 {
		perRow = 1
	}
	var grid ButtonGrid
	for len(buttons) > perRow {
		grid = append(grid, buttons[:perRow])
		buttons = buttons[perRow:]
	}
	if len(buttons) > 0 {
		grid = append(grid, buttons)
	}
	return grid
}
