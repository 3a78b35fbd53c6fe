package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// bboxPattern matches the hOCR "bbox x0 y0 x1 y1" title property
var bboxPattern = regexp.MustCompile(`bbox\s+(-?\d+)\s+(-?\d+)\s+(-?\d+)\s+(-?\d+)`)

// lineClasses are the hOCR classes treated as text lines
var lineClasses = []string{"ocr_line", "ocrx_line", "ocr_header", "ocr_caption", "ocr_textfloat"}

const wordClass = "ocrx_word"

// BBox is a pixel bounding box (top-left origin)
type BBox struct {
	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
}

// Line is one OCR text line in reading order
type Line struct {
	Text      string   `json:"text"`
	BBox      *BBox    `json:"bbox"`
	Words     []string `json:"words"`
	WordBoxes []*BBox  `json:"wordBoxes,omitempty"`
}

// Layout is the flattened text plus the per-line structure it was built from
type Layout struct {
	Text       string `json:"text"`
	Structured []Line `json:"structured"`
}

// ParseHOCR reads hOCR markup into lines ordered top-to-bottom.
// Reading order is purely by bbox y0; multi-column pages are not separated.
func ParseHOCR(markup string) (*Layout, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, ErrEmptyInput
	}

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableMarkup, err)
	}

	var lines []Line
	sawOCR := false

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			classes := classList(n)
			for _, c := range classes {
				if strings.HasPrefix(c, "ocr") {
					sawOCR = true
					break
				}
			}
			if hasAnyClass(classes, lineClasses...) {
				if line, ok := readLine(n); ok {
					lines = append(lines, line)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if !sawOCR {
		return nil, fmt.Errorf("%w: no hOCR elements found", ErrUnreadableMarkup)
	}

	sortByTop(lines)

	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
	}

	if lines == nil {
		lines = []Line{}
	}
	return &Layout{
		Text:       strings.Join(texts, "\n"),
		Structured: lines,
	}, nil
}

// readLine collects the word tokens of one line element
func readLine(n *html.Node) (Line, bool) {
	line := Line{BBox: parseBBox(attr(n, "title"))}

	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode && hasAnyClass(classList(c), wordClass) {
			text := strings.TrimSpace(norm.NFKC.String(textContent(c)))
			if text != "" {
				line.Words = append(line.Words, text)
				line.WordBoxes = append(line.WordBoxes, parseBBox(attr(c, "title")))
			}
			return
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)

	if len(line.Words) == 0 {
		return Line{}, false
	}
	line.Text = strings.Join(line.Words, " ")
	return line, true
}

// sortByTop orders boxed lines by y0. Lines without a bbox compare equal to
// everything, so they keep their original slots and only boxed lines move.
func sortByTop(lines []Line) {
	var slots []int
	var boxed []Line
	for i, l := range lines {
		if l.BBox != nil {
			slots = append(slots, i)
			boxed = append(boxed, l)
		}
	}
	sort.SliceStable(boxed, func(i, j int) bool {
		return boxed[i].BBox.Y0 < boxed[j].BBox.Y0
	})
	for k, idx := range slots {
		lines[idx] = boxed[k]
	}
}

func parseBBox(title string) *BBox {
	m := bboxPattern.FindStringSubmatch(title)
	if m == nil {
		return nil
	}
	var v [4]int
	for i := range v {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return nil
		}
		v[i] = n
	}
	return &BBox{X0: v[0], Y0: v[1], X1: v[2], Y1: v[3]}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func classList(n *html.Node) []string {
	return strings.Fields(attr(n, "class"))
}

func hasAnyClass(classes []string, want ...string) bool {
	for _, c := range classes {
		for _, w := range want {
			if c == w {
				return true
			}
		}
	}
	return false
}

// textContent concatenates all descendant text nodes
func textContent(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			buf.WriteString(c.Data)
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return buf.String()
}
