package garanti

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/ecomkit/checkout-service/internal/domain"
	"github.com/ecomkit/checkout-service/internal/domain/ports"
	"golang.org/x/net/html"
)

const (
	errorInputName     = "mderrormessage"
	challengeFormID    = "webform0"
	notAuthenticated   = "Not Authenticated"
	reasonCodeApproved = "00"
	messageApproved    = "Approved"
)

// ParseInitiateHTML normalizes the initiate-phase HTML response. The
// gateway either embeds an error indicator input, a 3-D Secure
// challenge form, or a plain redirect page.
func ParseInitiateHTML(body []byte) (*ports.InitiateResult, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeProtocol, "unparseable gateway HTML", err)
	}

	if msg, ok := findInputValue(doc, errorInputName); ok {
		if msg == notAuthenticated {
			return nil, domain.NewDomainError(domain.ErrorCodeNotAuthenticated, "card is not authenticated")
		}
		return nil, domain.NewDeclinedError(msg)
	}

	if form := findFormByID(doc, challengeFormID); form != nil {
		rendered, err := renderNode(form)
		if err != nil {
			return nil, domain.WrapError(domain.ErrorCodeProtocol, "rendering challenge form", err)
		}
		return &ports.InitiateResult{Kind: ports.ResponseKindForm, HTML: rendered}, nil
	}

	// No embedded form: the whole page is a redirection the payer's
	// browser should pass through.
	rendered, err := renderNode(doc)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeProtocol, "rendering redirect page", err)
	}
	return &ports.InitiateResult{Kind: ports.ResponseKindRedirect, HTML: rendered}, nil
}

// findInputValue walks the document for <input name=...> and returns
// its value attribute.
func findInputValue(n *html.Node, name string) (string, bool) {
	if n.Type == html.ElementNode && n.Data == "input" && attr(n, "name") == name {
		return attr(n, "value"), true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if v, ok := findInputValue(c, name); ok {
			return v, true
		}
	}
	return "", false
}

func findFormByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && n.Data == "form" && attr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if form := findFormByID(c, id); form != nil {
			return form
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// gvpsResponse covers the provisioning response fields the connector
// acts on; everything else in the document is ignored.
type gvpsResponse struct {
	Transaction struct {
		Response struct {
			ReasonCode string `xml:"ReasonCode"`
			Message    string `xml:"Message"`
			ErrorMsg   string `xml:"ErrorMsg"`
		} `xml:"Response"`
	} `xml:"Transaction"`
}

// ParseCallbackXML normalizes the callback-confirmation response.
// Approved requires ReasonCode "00" AND Message "Approved"; anything
// else is a decline carrying the provider's own error text.
func ParseCallbackXML(body []byte) (*ports.CallbackOutcome, error) {
	var resp gvpsResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeProtocol, "unparseable gateway XML", err)
	}

	r := resp.Transaction.Response
	if r.ReasonCode == "" && r.Message == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeProtocol, "gateway XML is missing the response node")
	}

	if r.ReasonCode == reasonCodeApproved && r.Message == messageApproved {
		return &ports.CallbackOutcome{Approved: true, Message: r.Message}, nil
	}

	reason := r.ErrorMsg
	if reason == "" {
		reason = r.Message
	}
	return &ports.CallbackOutcome{Approved: false, Message: r.Message, Reason: reason}, nil
}

// ParseQueryXML normalizes a status-query response. The relevant nodes
// can sit at varying depths depending on the inquiry type, so the first
// ReasonCode and ErrorMsg anywhere in the document are used.
func ParseQueryXML(body []byte) (*ports.CallbackOutcome, error) {
	reasonCode, reasonFound, err := firstElementText(body, "ReasonCode")
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeProtocol, "unparseable gateway XML", err)
	}
	errorMsg, _, err := firstElementText(body, "ErrorMsg")
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeProtocol, "unparseable gateway XML", err)
	}

	if !reasonFound {
		return nil, domain.NewDomainError(domain.ErrorCodeProtocol, "gateway XML is missing the reason code")
	}

	if reasonCode != "" && errorMsg != "" {
		return &ports.CallbackOutcome{Approved: false, Reason: errorMsg}, nil
	}
	return &ports.CallbackOutcome{Approved: true, Message: messageApproved}, nil
}

// firstElementText scans for the first element with the given local
// name and returns its character data.
func firstElementText(body []byte, name string) (string, bool, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != name {
			continue
		}
		var text struct {
			Value string `xml:",chardata"`
		}
		if err := decoder.DecodeElement(&text, &start); err != nil {
			return "", false, err
		}
		return strings.TrimSpace(text.Value), true, nil
	}
}
