package executor

// State 主循环状态
type State int

const (
	StateIdle State = iota
	StateActivateA
	StateDismissOverlays
	StateActivateB
	StateClick1
	StateAssertFocus1
	StateClick2
	StateAssertFocus2
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateActivateA:
		return "ACTIVATE_A"
	case StateDismissOverlays:
		return "DISMISS_OVERLAYS"
	case StateActivateB:
		return "ACTIVATE_B"
	case StateClick1:
		return "CLICK_1"
	case StateAssertFocus1:
		return "ASSERT_FOCUS_1"
	case StateClick2:
		return "CLICK_2"
	case StateAssertFocus2:
		return "ASSERT_FOCUS_2"
	case StateStopped:
		return "STOPPED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}
