package game

// DefaultMaxTurns is the total number of sends, both sides together, before a match is drawn
const DefaultMaxTurns = 320
