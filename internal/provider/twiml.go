package provider

import (
	"encoding/xml"
	"fmt"
)

// TwiML builds the provider's markup response for a webhook. Verbs are
// emitted in the order they are added.
type TwiML struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []interface{}
}

// Say speaks text to the caller
type Say struct {
	XMLName xml.Name `xml:"Say"`
	Text    string   `xml:",chardata"`
}

// Play plays an audio URL; Loop 0 repeats forever
type Play struct {
	XMLName xml.Name `xml:"Play"`
	Loop    int      `xml:"loop,attr"`
	URL     string   `xml:",chardata"`
}

// Enqueue places the caller into the named wait queue
type Enqueue struct {
	XMLName xml.Name `xml:"Enqueue"`
	Name    string   `xml:",chardata"`
}

// Dial connects the caller to a client or a number
type Dial struct {
	XMLName  xml.Name `xml:"Dial"`
	Timeout  int      `xml:"timeout,attr,omitempty"`
	CallerID string   `xml:"callerId,attr,omitempty"`
	Record   string   `xml:"record,attr,omitempty"`
	Action   string   `xml:"action,attr,omitempty"`
	Method   string   `xml:"method,attr,omitempty"`
	Client   string   `xml:"Client,omitempty"`
	Number   string   `xml:"Number,omitempty"`
}

// Redirect transfers control of the call to another webhook URL
type Redirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr,omitempty"`
	URL     string   `xml:",chardata"`
}

// Hangup ends the call
type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// Add appends verbs to the response
func (t *TwiML) Add(verbs ...interface{}) *TwiML {
	t.Verbs = append(t.Verbs, verbs...)
	return t
}

// Render serializes the response as an XML document
func (t *TwiML) Render() (string, error) {
	body, err := xml.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("failed to render response: %w", err)
	}
	return xml.Header + string(body), nil
}
