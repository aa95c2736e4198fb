package game

// Message represents an on-screen message that fades over time.
type Message struct {
	Text     string
	TimeLeft float64 // Seconds remaining
	MaxTime  float64 // Initial duration
}

// Alpha returns the message opacity, fading out over its last second.
func (m Message) Alpha() float64 {
	if m.TimeLeft >= 1 {
		return 1
	}
	if m.TimeLeft <= 0 {
		return 0
	}
	return m.TimeLeft
}
