package model

import "strconv"

// Label is a predicted performance rating class.
type Label int

const (
	Low Label = iota
	Good
	Excellent
	Outstanding
)

// Legend explains the label values next to every predictions table.
const Legend = "0-Low, 1-Good, 2-Excellent, 3-Outstanding"

var labelNames = [...]string{"Low", "Good", "Excellent", "Outstanding"}

// Labels lists every label a model may produce.
var Labels = []Label{Low, Good, Excellent, Outstanding}

func (l Label) Valid() bool {
	return l >= Low && l <= Outstanding
}

func (l Label) String() string {
	if !l.Valid() {
		return "Label(" + strconv.Itoa(int(l)) + ")"
	}
	return labelNames[l]
}
