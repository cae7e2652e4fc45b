package domain

// One line of an input file or API response, tagged with its 1-based line number in the source.
type TextLine struct {
	Num  int
	Text string
}
