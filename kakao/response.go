// Package kakao builds skill responses for the Kakao i Open Builder chatbot
// platform and decodes its skill requests.
package kakao

import (
	"encoding/json"
)

// Version is the skill response format version.
const Version = "2.0"

// Output is a single bubble of a response.
type Output interface {
	OutputType() string
}

// SimpleText is a plain text bubble.
type SimpleText struct {
	Text string `json:"text"`
}

func (SimpleText) OutputType() string { return "simpleText" }

// Thumbnail is the image of a card.
type Thumbnail struct {
	ImageURL   string `json:"imageUrl"`
	FixedRatio bool   `json:"fixedRatio"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
}

// Button actions.
const (
	ActionBlock   = "block"
	ActionWebLink = "webLink"
)

// Button is a card button.
type Button struct {
	Label      string `json:"label"`
	Action     string `json:"action"`
	BlockID    string `json:"blockId,omitempty"`
	WebLinkURL string `json:"webLinkUrl,omitempty"`
}

// BlockButton returns a button that jumps to a block.
func BlockButton(label, blockID string) Button {
	return Button{Label: label, Action: ActionBlock, BlockID: blockID}
}

// LinkButton returns a button that opens url.
func LinkButton(label, url string) Button {
	return Button{Label: label, Action: ActionWebLink, WebLinkURL: url}
}

// BasicCard is a card with an optional thumbnail and buttons.
type BasicCard struct {
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Thumbnail   *Thumbnail `json:"thumbnail,omitempty"`
	Buttons     []Button   `json:"buttons"`
}

func (BasicCard) OutputType() string { return "basicCard" }

// MarshalJSON always emits the buttons array.
func (c BasicCard) MarshalJSON() ([]byte, error) {
	type card BasicCard
	if c.Buttons == nil {
		c.Buttons = []Button{}
	}
	return json.Marshal(card(c))
}

// WithImage sets the thumbnail. Width and height are only sent when
// fixedRatio is set.
func (c BasicCard) WithImage(url string, fixedRatio bool, width, height int) BasicCard {
	t := &Thumbnail{ImageURL: url, FixedRatio: fixedRatio}
	if fixedRatio {
		t.Width, t.Height = width, height
	}
	c.Thumbnail = t
	return c
}

// Carousel is a horizontally scrolling list of cards.
type Carousel struct {
	Type  string      `json:"type"`
	Items []BasicCard `json:"items"`
}

func (Carousel) OutputType() string { return "carousel" }

// NewCarousel returns a carousel of basic cards.
func NewCarousel(items ...BasicCard) Carousel {
	if items == nil {
		items = []BasicCard{}
	}
	return Carousel{Type: BasicCard{}.OutputType(), Items: items}
}

// Context is an output context carried into the next turn.
type Context struct {
	Name     string            `json:"name"`
	LifeSpan int               `json:"lifeSpan"`
	Params   map[string]string `json:"params"`
}

// NewContext returns a context named name alive for lifeSpan turns.
func NewContext(name string, lifeSpan int) Context {
	return Context{Name: name, LifeSpan: lifeSpan, Params: map[string]string{}}
}

// With returns c with param key set to value.
func (c Context) With(key, value string) Context {
	params := make(map[string]string, len(c.Params)+1)
	for k, v := range c.Params {
		params[k] = v
	}
	params[key] = value
	c.Params = params
	return c
}

// Response is a skill response envelope.
type Response struct {
	outputs  []Output
	contexts []Context
}

// NewResponse returns an empty response.
func NewResponse() *Response {
	return &Response{}
}

// AddOutput appends bubbles.
func (r *Response) AddOutput(outputs ...Output) *Response {
	r.outputs = append(r.outputs, outputs...)
	return r
}

// AddContext appends output contexts.
func (r *Response) AddContext(contexts ...Context) *Response {
	r.contexts = append(r.contexts, contexts...)
	return r
}

// Outputs returns the bubbles added so far.
func (r *Response) Outputs() []Output {
	return r.outputs
}

// Text is a shorthand for a response holding a single SimpleText.
func Text(text string) *Response {
	return NewResponse().AddOutput(SimpleText{Text: text})
}

type envelope struct {
	Version  string `json:"version"`
	Template struct {
		Outputs []map[string]Output `json:"outputs"`
	} `json:"template"`
	Context struct {
		Values []Context `json:"values"`
	} `json:"context"`
}

// MarshalJSON renders the envelope. Each output is keyed by its type.
func (r *Response) MarshalJSON() ([]byte, error) {
	var e envelope
	e.Version = Version
	e.Template.Outputs = make([]map[string]Output, 0, len(r.outputs))
	for _, o := range r.outputs {
		e.Template.Outputs = append(e.Template.Outputs, map[string]Output{o.OutputType(): o})
	}
	e.Context.Values = r.contexts
	if e.Context.Values == nil {
		e.Context.Values = []Context{}
	}
	return json.Marshal(e)
}
