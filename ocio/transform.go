package ocio

// TransformDirection selects which way a Transform is applied.
type TransformDirection int

const (
	DirForward TransformDirection = iota
	DirInverse
)

func (d TransformDirection) String() string {
	if d == DirInverse {
		return "inverse"
	}
	return "forward"
}

// Interpolation selects the LUT sampling method for a FileTransform.
type Interpolation int

const (
	InterpUnknown Interpolation = iota
	InterpNearest
	InterpLinear
	InterpBest
)

// Transform is any of the value types a ColorSpace, Look, NamedTransform,
// or GroupTransform can carry. It is a sealed interface: only the value
// types in this package implement it.
type Transform interface {
	isTransform()
}

// FileTransform applies a LUT or CDL file on disk.
type FileTransform struct {
	Src           string
	CCCId         string
	Interpolation Interpolation
	Direction     TransformDirection
}

func (*FileTransform) isTransform() {}

// ColorSpaceTransform converts pixels between two named color spaces.
// Dst (or Src) may be a context variable reference such as "$SHOT_LOOKS".
type ColorSpaceTransform struct {
	Src, Dst   string
	Direction  TransformDirection
	DataBypass bool
}

func (*ColorSpaceTransform) isTransform() {}

// DisplayViewTransform renders through a display color space and view.
type DisplayViewTransform struct {
	Src         string
	Display     string
	View        string
	Direction   TransformDirection
	LooksBypass bool
}

func (*DisplayViewTransform) isTransform() {}

// GroupTransform composes an ordered sequence of transforms.
type GroupTransform struct {
	Transforms []Transform
}

func (*GroupTransform) isTransform() {}

// Append adds t to the end of the group.
func (g *GroupTransform) Append(t Transform) {
	g.Transforms = append(g.Transforms, t)
}

// Len reports the number of transforms in the group.
func (g *GroupTransform) Len() int { return len(g.Transforms) }

// LookTransform applies one or more named Looks between two color spaces.
type LookTransform struct {
	Src, Dst                 string
	Looks                    string
	SkipColorSpaceConversion bool
	Direction                TransformDirection
}

func (*LookTransform) isTransform() {}

// CDLTransform is an ASC Color Decision List primary grade.
type CDLTransform struct {
	Slope, Offset, Power [3]float64
	Sat                  float64
	Direction             TransformDirection
}

func (*CDLTransform) isTransform() {}

// MatrixTransform is a 4x4 matrix applied to homogeneous RGBA pixels.
type MatrixTransform struct {
	Matrix    [16]float64
	Offset    [4]float64
	Direction TransformDirection
}

func (*MatrixTransform) isTransform() {}

// NewIdentityMatrixTransform returns a MatrixTransform with no visible
// effect, used by the working-location reassembler so a named transform
// is never left with an empty group.
func NewIdentityMatrixTransform() *MatrixTransform {
	return &MatrixTransform{Matrix: [16]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// ReferencedColorSpaces returns every color-space name that t addresses
// directly (not recursing into nested transforms other than GroupTransform).
// Context-variable references (a name beginning with "$") are omitted:
// they resolve at evaluation time, not compile time, and are never added
// as color spaces themselves.
func ReferencedColorSpaces(t Transform) []string {
	var out []string
	collectReferencedColorSpaces(t, &out)
	return out
}

func collectReferencedColorSpaces(t Transform, out *[]string) {
	switch v := t.(type) {
	case nil:
		return
	case *ColorSpaceTransform:
		addRef(out, v.Src)
		addRef(out, v.Dst)
	case *LookTransform:
		addRef(out, v.Src)
		addRef(out, v.Dst)
	case *DisplayViewTransform:
		addRef(out, v.Src)
		addRef(out, v.Display)
	case *GroupTransform:
		for _, child := range v.Transforms {
			collectReferencedColorSpaces(child, out)
		}
	case *FileTransform, *CDLTransform, *MatrixTransform:
		// No color-space-name references.
	}
}

func addRef(out *[]string, name string) {
	if name == "" || name[0] == '$' {
		return
	}
	*out = append(*out, name)
}
