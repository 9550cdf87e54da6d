package amf

// attr is one (name, value) XML attribute pair, order preserved.
type attr struct {
	Name  string
	Value string
}

// subElement is one (tagName, textValue) pair, order preserved. Later
// passes scan for marker tags and then consume subsequent entries until
// the next marker, so order matters.
type subElement struct {
	Tag  string
	Text string
}

// transformRecord is the shared shape of AMFTransformRecord: an ordered
// list of attributes and an ordered list of sub-elements.
type transformRecord struct {
	attrs       []attr
	subElements []subElement
}

func (r *transformRecord) addAttr(name, value string) {
	r.attrs = append(r.attrs, attr{Name: name, Value: value})
}

func (r *transformRecord) addSubElement(tag, text string) {
	r.subElements = append(r.subElements, subElement{Tag: tag, Text: text})
}

// attrValue returns the value of the named attribute using case-folded
// comparison, and whether it was present at all.
func (r *transformRecord) attrValue(name string) (string, bool) {
	for _, a := range r.attrs {
		if foldEqual(a.Name, name) {
			return a.Value, true
		}
	}
	return "", false
}

func (r *transformRecord) empty() bool {
	return len(r.attrs) == 0 && len(r.subElements) == 0
}

// inputTransformRecord adds the nested top-level-descendant stack used to
// capture an inverse ODT/RRT block nested inside aces:inputTransform, plus
// the isInverse flag the router sets on entering that nested block.
type inputTransformRecord struct {
	transformRecord
	tldElements []subElement
	tldStack    []string
	isInverse   bool
}

func (r *inputTransformRecord) empty() bool {
	return r.transformRecord.empty() && len(r.tldElements) == 0
}

// outputTransformRecord mirrors inputTransformRecord for the forward
// ODT/RRT block nested inside aces:outputTransform.
type outputTransformRecord struct {
	transformRecord
	tldElements []subElement
	tldStack    []string
}

func (r *outputTransformRecord) empty() bool {
	return r.transformRecord.empty() && len(r.tldElements) == 0
}

// lookTransformRecord is one aces:lookTransform element: its own attrs
// (notably "applied") plus an ordered sub-element list covering
// description, transformId/file, CDL nodes, and cdlWorkingSpace content.
type lookTransformRecord struct {
	transformRecord
}

// clipIDRecord is the aces:clipId element: clipName and uuid arrive as
// character data of their own child elements, so they land in subElements
// like any other look/clipId content.
type clipIDRecord struct {
	transformRecord
}

func (r *clipIDRecord) value(tag string) (string, bool) {
	for _, se := range r.subElements {
		if foldEqual(se.Tag, tag) {
			return se.Text, true
		}
	}
	return "", false
}

// intermediateModel is the AMF Intermediate Model (AIM): the neutral
// staging structure C1 populates and C4/C5 consume. It is discarded once
// the build completes.
type intermediateModel struct {
	clipID clipIDRecord
	input  inputTransformRecord
	output outputTransformRecord
	looks  []lookTransformRecord

	// numLooksBeforeWorkingLocation is nil if no workingLocation tag was
	// seen; otherwise it is the number of look records already appended
	// at the moment the tag was encountered.
	numLooksBeforeWorkingLocation *int
}

func (m *intermediateModel) clipName() string {
	if v, ok := m.clipID.value("clipName"); ok {
		return v
	}
	return ""
}
