package types

type Rounding uint8

const (
	RoundingDown Rounding = iota
	RoundingUp
)
