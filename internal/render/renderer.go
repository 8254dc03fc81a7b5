package render

type Renderer interface {
	Init() error
	Deinit() error
	Fill(row, column int, message string)
	ClearRow(row int)
	Flush()
}
