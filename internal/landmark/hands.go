package landmark

import "github.com/KyungWonPark/GestureRDM/internal/detect"

// Hands holds the hand assigned to each side in one frame. A nil side was not detected.
type Hands struct {
	Left  []detect.Point
	Right []detect.Point
}

// ResolveHands assigns detected hands to sides from their classification
// labels alone. When a label occurs more than once, the best scoring hand
// wins; on equal scores the earlier one is kept. Nothing is carried between
// frames.
func ResolveHands(hands []detect.Hand) Hands {
	var res Hands
	leftScore, rightScore := 0.0, 0.0

	for _, h := range hands {
		switch h.Label {
		case detect.Left:
			if res.Left == nil || h.Score > leftScore {
				res.Left, leftScore = h.Points, h.Score
			}
		case detect.Right:
			if res.Right == nil || h.Score > rightScore {
				res.Right, rightScore = h.Points, h.Score
			}
		}
	}

	return res
}
