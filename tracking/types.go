package tracking

import "fmt"

// ColorClass identifies one of the hue classes the vision pipeline is
// configured to detect. It is a closed enumeration resolved once at
// configuration load; nothing downstream compares color names as strings.
type ColorClass int

const (
	ClassRed ColorClass = iota
	ClassBlue
	ClassYellow // hazard target, must travel alone
	ClassBlack  // core target, high value
	ClassPurple // fence marking, never a pickable target
)

// TargetClasses lists the classes that can become pickable objects.
// Purple is deliberately excluded: it only marks the exclusion fence.
var TargetClasses = []ColorClass{ClassRed, ClassBlue, ClassYellow, ClassBlack}

// TeamClasses lists the classes a team can own.
var TeamClasses = []ColorClass{ClassRed, ClassBlue}

func (c ColorClass) String() string {
	switch c {
	case ClassRed:
		return "red"
	case ClassBlue:
		return "blue"
	case ClassYellow:
		return "yellow"
	case ClassBlack:
		return "black"
	case ClassPurple:
		return "purple"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// ParseColorClass resolves a configured color name into its class.
func ParseColorClass(name string) (ColorClass, error) {
	switch name {
	case "red":
		return ClassRed, nil
	case "blue":
		return ClassBlue, nil
	case "yellow":
		return ClassYellow, nil
	case "black":
		return ClassBlack, nil
	case "purple":
		return ClassPurple, nil
	default:
		return 0, fmt.Errorf("unknown color class %q", name)
	}
}

// Opponent returns the opposing team class. Only meaningful for the two
// team classes.
func (c ColorClass) Opponent() ColorClass {
	if c == ClassRed {
		return ClassBlue
	}
	return ClassRed
}

// Object is one circular target detected in a single frame. Objects are
// rebuilt from scratch every frame and discarded once the frame's decision
// has been made; nothing persists across frames.
type Object struct {
	X           int // pixel center
	Y           int
	Radius      int // pixels
	Class       ColorClass
	Area        float64 // contour area, px²
	Circularity float64 // contour area / enclosing circle area, 1.0 = perfect circle
}
