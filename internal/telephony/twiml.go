package telephony

import "encoding/xml"

// TwiML content type expected by the provider webhook protocol.
const TwiMLContentType = "application/xml"

type twimlMessage struct {
	To   string `xml:"to,attr,omitempty"`
	Body string `xml:",chardata"`
}

type messagingDocument struct {
	XMLName  xml.Name       `xml:"Response"`
	Messages []twimlMessage `xml:"Message"`
}

// MessagingResponse builds the markup returned from SMS webhooks.
type MessagingResponse struct {
	doc messagingDocument
}

// NewMessagingResponse creates an empty messaging response.
func NewMessagingResponse() *MessagingResponse {
	return &MessagingResponse{}
}

// Message appends a reply delivered to the inbound sender.
func (r *MessagingResponse) Message(body string) *MessagingResponse {
	r.doc.Messages = append(r.doc.Messages, twimlMessage{Body: body})
	return r
}

// MessageTo appends a message addressed to an explicit recipient,
// used when relaying an inbound body to the resolved counterpart.
func (r *MessagingResponse) MessageTo(to, body string) *MessagingResponse {
	r.doc.Messages = append(r.doc.Messages, twimlMessage{To: to, Body: body})
	return r
}

// Render serializes the response document.
func (r *MessagingResponse) Render() (string, error) {
	return render(r.doc)
}

type voiceDocument struct {
	XMLName xml.Name `xml:"Response"`
	Play    string   `xml:"Play,omitempty"`
	Dial    string   `xml:"Dial,omitempty"`
}

// VoiceResponse builds the markup returned from voice webhooks.
type VoiceResponse struct {
	doc voiceDocument
}

// NewVoiceResponse creates an empty voice response.
func NewVoiceResponse() *VoiceResponse {
	return &VoiceResponse{}
}

// Play sets an announcement URL played before anything else.
func (r *VoiceResponse) Play(url string) *VoiceResponse {
	r.doc.Play = url
	return r
}

// Dial bridges the call to the given number.
func (r *VoiceResponse) Dial(number string) *VoiceResponse {
	r.doc.Dial = number
	return r
}

// Render serializes the response document.
func (r *VoiceResponse) Render() (string, error) {
	return render(r.doc)
}

func render(doc any) (string, error) {
	out, err := xml.Marshal(doc)
	if err != nil {
		return "", err
	}
	return xml.Header + string(out), nil
}
