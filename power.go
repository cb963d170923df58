package shadowfb

// PowerMode mirrors the display power-management signal levels. On the
// output side they collapse to three behaviours: active, blanked, and
// full teardown.
type PowerMode int

const (
	PowerOn PowerMode = iota
	PowerStandby
	PowerSuspend
	PowerOff
)

func (m PowerMode) String() string {
	switch m {
	case PowerOn:
		return "on"
	case PowerStandby:
		return "standby"
	case PowerSuspend:
		return "suspend"
	case PowerOff:
		return "off"
	}
	return "unknown"
}

// SetPower applies a power-management transition. PowerOn reactivates a
// torn-down screen, unblanks, and repaints from the shadow buffer.
// PowerStandby and PowerSuspend blank the screen. PowerOff tears it
// down via Restore.
func (s *Screen) SetPower(m PowerMode) {
	switch m {
	case PowerOn:
		if !s.active {
			s.active = true
			s.clearOut()
		}
		s.blanked = false
		s.RefreshAll()
	case PowerStandby, PowerSuspend:
		s.blanked = true
		s.clearOut()
	case PowerOff:
		s.Restore()
	}
}
