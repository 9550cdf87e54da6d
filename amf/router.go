package amf

import (
	"encoding/xml"
	"io"
	"strings"
)

// lineCountingReader wraps a reader and tracks how many newlines have
// passed through it, giving the router an approximate current line number
// to attach to parse errors without the decoder's own line bookkeeping
// (unexported in encoding/xml outside of its own SyntaxError).
type lineCountingReader struct {
	r    io.Reader
	line int
}

func newLineCountingReader(r io.Reader) *lineCountingReader {
	return &lineCountingReader{r: r, line: 1}
}

func (l *lineCountingReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	for _, b := range p[:n] {
		if b == '\n' {
			l.line++
		}
	}
	return n, err
}

// parser drives the streaming XML decoder over an AMF document, tracking
// the five section flags and the current element name, and writing
// structured facts into an intermediateModel as it goes. This is C1, the
// XML Event Router.
type parser struct {
	lc      *lineCountingReader
	dec     *xml.Decoder
	model   *intermediateModel
	logger  logFunc
	current string

	insideClipId        bool
	insideInputTransform bool
	insideOutputTransform bool
	insideLookTransform  bool
	insidePipeline       bool

	currentLook *lookTransformRecord
}

// logFunc lets router.go stay independent of the observability package's
// concrete Logger interface; compiler.go adapts one into this shape.
type logFunc func(event string, line int)

// parseAMF runs C1 over r and returns the intermediate model together
// with the final line count reached, so later phases that fail after
// parsing has finished (C4, C5) can still attach a meaningful Line to
// their CompileError instead of 0 — mirroring how original_source's
// parse() always carries m_lineNumber forward into post-parse errors.
func parseAMF(r io.Reader, log logFunc) (*intermediateModel, int, error) {
	if log == nil {
		log = func(string, int) {}
	}
	lc := newLineCountingReader(r)
	p := &parser{
		lc:     lc,
		dec:    xml.NewDecoder(lc),
		model:  &intermediateModel{},
		logger: log,
	}
	if err := p.run(); err != nil {
		return nil, lc.line, err
	}
	return p.model, lc.line, nil
}

func (p *parser) run() error {
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return newCompileError(ErrKindXMLParse, p.lc.line, "decoding AMF document: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := p.startElement(t); err != nil {
				return err
			}
		case xml.CharData:
			p.charData(string(t))
		case xml.EndElement:
			p.endElement(t)
		}
	}
}

func localName(n xml.Name) string { return n.Local }

func (p *parser) startElement(t xml.StartElement) error {
	tag := localName(t.Name)
	p.logger("start:"+tag, p.lc.line)

	switch {
	case foldEqual(tag, "clipId"):
		p.insideClipId = true
		return nil

	case foldEqual(tag, "inputTransform"):
		p.insideInputTransform = true
		for _, a := range t.Attr {
			p.model.input.addAttr(localName(a.Name), a.Value)
		}
		p.model.input.tldStack = append(p.model.input.tldStack, tag)
		return nil

	case foldEqual(tag, "outputTransform"):
		p.insideOutputTransform = true
		for _, a := range t.Attr {
			p.model.output.addAttr(localName(a.Name), a.Value)
		}
		p.model.output.tldStack = append(p.model.output.tldStack, tag)
		return nil

	case foldEqual(tag, "lookTransform"):
		p.insideLookTransform = true
		p.currentLook = &lookTransformRecord{}
		for _, a := range t.Attr {
			p.currentLook.addAttr(localName(a.Name), a.Value)
		}
		return nil

	case foldEqual(tag, "pipeline"):
		p.insidePipeline = true
		return nil

	case foldEqual(tag, "workingLocation"):
		if p.insidePipeline && p.model.numLooksBeforeWorkingLocation == nil {
			n := len(p.model.looks)
			p.model.numLooksBeforeWorkingLocation = &n
		}
		return nil
	}

	if p.insideInputTransform && isTLDMarker(tag) {
		p.model.input.isInverse = true
		p.model.input.tldStack = append(p.model.input.tldStack, tag)
		// A marker breadcrumb with no text lets the builder's scanning
		// passes find section boundaries (see §3: "later passes scan for
		// a marker tag... and then consume subsequent sub-elements until
		// the next marker").
		p.model.input.addSubElement(tag, "")
		return nil
	}
	if p.insideOutputTransform && isTLDMarker(tag) {
		p.model.output.tldStack = append(p.model.output.tldStack, tag)
		p.model.output.addSubElement(tag, "")
		return nil
	}

	if p.insideLookTransform && foldEqual(tag, "ColorCorrectionRef") {
		var value string
		if len(t.Attr) > 0 {
			value = t.Attr[0].Value
		}
		p.currentLook.addSubElement("cdl:ColorCorrectionRef", value)
		return nil
	}

	if p.insideLookTransform && isCDLWorkingSpaceMarker(tag) {
		p.currentLook.addSubElement(tag, "")
		p.current = tag
		return nil
	}

	p.current = tag
	return nil
}

// isTLDMarker reports whether tag is one of the four elements that open a
// nested inverse/forward RRT+ODT block inside an input or output
// transform.
func isTLDMarker(tag string) bool {
	switch {
	case foldEqual(tag, "inverseOutputDeviceTransform"),
		foldEqual(tag, "inverseReferenceRenderingTransform"),
		foldEqual(tag, "outputDeviceTransform"),
		foldEqual(tag, "referenceRenderingTransform"):
		return true
	default:
		return false
	}
}

func isCDLWorkingSpaceMarker(tag string) bool {
	switch {
	case foldEqual(tag, "cdlWorkingSpace"),
		foldEqual(tag, "toCdlWorkingSpace"),
		foldEqual(tag, "fromCdlWorkingSpace"):
		return true
	default:
		return false
	}
}

func (p *parser) charData(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	switch {
	case p.insideInputTransform:
		top := tldTop(p.model.input.tldStack)
		if foldEqual(top, "inputTransform") {
			p.model.input.tldElements = append(p.model.input.tldElements, subElement{Tag: p.current, Text: text})
		} else {
			p.model.input.addSubElement(p.current, text)
		}
	case p.insideOutputTransform:
		top := tldTop(p.model.output.tldStack)
		if foldEqual(top, "outputTransform") {
			p.model.output.tldElements = append(p.model.output.tldElements, subElement{Tag: p.current, Text: text})
		} else {
			p.model.output.addSubElement(p.current, text)
		}
	case p.insideLookTransform:
		p.currentLook.addSubElement(p.current, text)
	case p.insideClipId:
		p.model.clipID.addSubElement(p.current, text)
	}
}

func tldTop(stack []string) string {
	if len(stack) == 0 {
		return ""
	}
	return stack[len(stack)-1]
}

func (p *parser) endElement(t xml.EndElement) {
	tag := localName(t.Name)
	p.logger("end:"+tag, p.lc.line)

	switch {
	case foldEqual(tag, "clipId"):
		p.insideClipId = false
	case foldEqual(tag, "inputTransform"):
		p.insideInputTransform = false
		p.model.input.tldStack = popTLD(p.model.input.tldStack)
	case foldEqual(tag, "outputTransform"):
		p.insideOutputTransform = false
		p.model.output.tldStack = popTLD(p.model.output.tldStack)
	case foldEqual(tag, "lookTransform"):
		p.insideLookTransform = false
		if p.currentLook != nil {
			p.model.looks = append(p.model.looks, *p.currentLook)
			p.currentLook = nil
		}
	case foldEqual(tag, "pipeline"):
		p.insidePipeline = false
	case p.insideInputTransform && isTLDMarker(tag):
		p.model.input.tldStack = popTLD(p.model.input.tldStack)
	case p.insideOutputTransform && isTLDMarker(tag):
		p.model.output.tldStack = popTLD(p.model.output.tldStack)
	}

	p.current = ""
}

func popTLD(stack []string) []string {
	if len(stack) == 0 {
		return stack
	}
	return stack[:len(stack)-1]
}
