package landmark

import "fmt"

// poseNames are the 33 body landmarks of the pose model, in schema order
var poseNames = []string{
	"nose",
	"left_eye_(inner)",
	"left_eye",
	"left_eye_(outer)",
	"right_eye_(inner)",
	"right_eye",
	"right_eye_(outer)",
	"left_ear",
	"right_ear",
	"mouth_(left)",
	"mouth_(right)",
	"left_shoulder",
	"right_shoulder",
	"left_elbow",
	"right_elbow",
	"left_wrist",
	"right_wrist",
	"left_pinky",
	"right_pinky",
	"left_index",
	"right_index",
	"left_thumb",
	"right_thumb",
	"left_hip",
	"right_hip",
	"left_knee",
	"right_knee",
	"left_ankle",
	"right_ankle",
	"left_heel",
	"right_heel",
	"left_foot_index",
	"right_foot_index",
}

// handNames are the 21 landmarks of the hand model, in schema order
var handNames = []string{
	"wrist",
	"thumb_cmc",
	"thumb_mcp",
	"thumb_ip",
	"thumb_tip",
	"index_finger_mcp",
	"index_finger_pip",
	"index_finger_dip",
	"index_finger_tip",
	"middle_finger_mcp",
	"middle_finger_pip",
	"middle_finger_dip",
	"middle_finger_tip",
	"ring_finger_mcp",
	"ring_finger_pip",
	"ring_finger_dip",
	"ring_finger_tip",
	"pinky_mcp",
	"pinky_pip",
	"pinky_dip",
	"pinky_tip",
}

// CoordinateSuffixes name the coordinate axes in flatten order
var CoordinateSuffixes = []string{"x", "y", "z"}

// PoseName returns the name of pose landmark i. Models with a different
// schema get positional names.
func PoseName(i int) string {
	if i >= 0 && i < len(poseNames) {
		return poseNames[i]
	}

	return fmt.Sprintf("pose_%d", i)
}

// HandName returns the name of hand landmark i without side prefix
func HandName(i int) string {
	if i >= 0 && i < len(handNames) {
		return handNames[i]
	}

	return fmt.Sprintf("hand_%d", i)
}

// Connection joins two landmarks when drawing a skeleton
type Connection [2]int

var (
	// PoseConnections are the skeleton lines of the pose model
	PoseConnections = []Connection{
		{0, 1}, {1, 2}, {2, 3}, {3, 7}, {0, 4}, {4, 5}, {5, 6}, {6, 8}, {9, 10},
		{11, 12}, {11, 13}, {13, 15}, {15, 17}, {15, 19}, {15, 21}, {17, 19},
		{12, 14}, {14, 16}, {16, 18}, {16, 20}, {16, 22}, {18, 20},
		{11, 23}, {12, 24}, {23, 24}, {23, 25}, {24, 26}, {25, 27}, {26, 28},
		{27, 29}, {28, 30}, {29, 31}, {30, 32}, {27, 31}, {28, 32},
	}

	// HandConnections are the skeleton lines of the hand model
	HandConnections = []Connection{
		{0, 1}, {1, 2}, {2, 3}, {3, 4},
		{0, 5}, {5, 6}, {6, 7}, {7, 8},
		{5, 9}, {9, 10}, {10, 11}, {11, 12},
		{9, 13}, {13, 14}, {14, 15}, {15, 16},
		{13, 17}, {0, 17}, {17, 18}, {18, 19}, {19, 20},
	}

	// PoseHandPoints are the finger points of the pose model (pinky, index,
	// thumb on both sides). The hand model covers them in more detail, so
	// they are left out of annotated videos.
	PoseHandPoints = []int{17, 18, 19, 20, 21, 22}
)
