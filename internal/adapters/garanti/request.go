package garanti

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ecomkit/checkout-service/internal/domain"
	"github.com/ecomkit/checkout-service/internal/domain/ports"
	"github.com/shopspring/decimal"
)

const (
	apiVersion  = "12"
	gvpsVersion = "16"
	// txnTypeSales is the only transaction type the checkout flow sends:
	// a direct single-installment card sale.
	txnTypeSales = "sales"
	txnTypeQuery = "orderhistoryinq"
)

// MinorUnits converts a decimal amount to integer minor units (kuruş
// for TRY). Rounding is half away from zero at 2 decimals, then to
// integer; truncation would drift one minor unit off the provider's
// ledger.
func MinorUnits(amount decimal.Decimal) string {
	return strconv.FormatInt(amount.Round(2).Shift(2).IntPart(), 10)
}

// RequestBuilder assembles the outbound parameter sets and provisioning
// XML documents. Built fresh per payment attempt.
type RequestBuilder struct {
	cfg    Config
	hasher Hasher
	now    func() time.Time
}

// NewRequestBuilder creates a request builder for the given gateway config.
func NewRequestBuilder(cfg Config) *RequestBuilder {
	return &RequestBuilder{
		cfg: cfg,
		hasher: Hasher{
			TerminalID:   cfg.TerminalID,
			ProvPassword: cfg.ProvPassword,
			StoreKey:     cfg.StoreKey,
		},
		now: time.Now,
	}
}

// BuildInitiateVals assembles the form-encoded payment-initiation
// parameters. The returned hash is the secure3dhash embedded in the
// request; the caller saves it on the transaction for the callback phase.
func (b *RequestBuilder) BuildInitiateVals(tx *domain.Transaction, card domain.CardArgs, amount decimal.Decimal, clientIP string) (url.Values, string, error) {
	currencyCode, err := CurrencyCode(tx.Currency)
	if err != nil {
		return nil, "", err
	}

	orderRef := tx.ProviderReference()
	amountMinor := MinorUnits(amount)
	hash := b.hasher.Secure3DHash(orderRef, amountMinor, b.cfg.ReturnURL, txnTypeSales)

	vals := url.Values{}
	vals.Set("refreshtime", "0")
	vals.Set("paymenttype", "creditcard")
	vals.Set("secure3dsecuritylevel", "3D")
	vals.Set("txntype", txnTypeSales)
	vals.Set("cardname", card.HolderName)
	vals.Set("cardnumber", card.NormalizedNumber())
	vals.Set("cardexpiredatemonth", card.ExpiryMonth)
	vals.Set("cardexpiredateyear", card.ShortExpiryYear())
	vals.Set("cardcvv2", card.CVV)
	vals.Set("companyname", b.cfg.CompanyName)
	vals.Set("apiversion", apiVersion)
	vals.Set("mode", b.cfg.Mode)
	vals.Set("terminalprovuserid", b.cfg.ProvUser)
	vals.Set("terminaluserid", b.cfg.TerminalID)
	vals.Set("terminalid", b.cfg.TerminalID)
	vals.Set("terminalmerchantid", b.cfg.MerchantID)
	vals.Set("orderid", orderRef)
	vals.Set("customeremailaddress", tx.FirstEmail())
	vals.Set("customeripaddress", clientIP)
	vals.Set("txnamount", amountMinor)
	vals.Set("txncurrencycode", currencyCode)
	// Single payment only, the gateway wants this field present but empty.
	vals.Set("txninstallmentcount", "")
	vals.Set("successurl", b.cfg.ReturnURL)
	vals.Set("errorurl", b.cfg.ReturnURL)
	vals.Set("lang", tx.Lang())
	vals.Set("txntimestamp", strconv.FormatInt(b.now().UnixMilli(), 10))
	vals.Set("txntimeoutperiod", "60")
	vals.Set("addcampaigninstallment", "N")
	vals.Set("totalinstallmentcount", "0")
	vals.Set("installmentonlyforcommercialcard", "N")
	vals.Set("secure3dhash", hash)

	return vals, hash, nil
}

// GVPSRequest is the provisioning document sent for callback
// confirmation and status queries. Node presence and nesting order are
// fixed by the gateway protocol.
type GVPSRequest struct {
	XMLName     xml.Name        `xml:"GVPSRequest"`
	Mode        string          `xml:"Mode"`
	Version     string          `xml:"Version"`
	ChannelCode string          `xml:"ChannelCode"`
	Terminal    terminalNode    `xml:"Terminal"`
	Customer    customerNode    `xml:"Customer"`
	Card        cardNode        `xml:"Card"`
	Order       orderNode       `xml:"Order"`
	Transaction transactionNode `xml:"Transaction"`
}

type terminalNode struct {
	ProvUserID string `xml:"ProvUserID"`
	HashData   string `xml:"HashData"`
	UserID     string `xml:"UserID"`
	ID         string `xml:"ID"`
	MerchantID string `xml:"MerchantID"`
}

type customerNode struct {
	IPAddress    string `xml:"IPAddress"`
	EmailAddress string `xml:"EmailAddress"`
}

// cardNode is always emitted with empty fields: the provisioning call
// is a status confirmation, card data is never replayed.
type cardNode struct {
	Number     string `xml:"Number"`
	ExpireDate string `xml:"ExpireDate"`
	CVV2       string `xml:"CVV2"`
}

type orderNode struct {
	OrderID     string          `xml:"OrderID"`
	GroupID     string          `xml:"GroupID"`
	AddressList addressListNode `xml:"AddressList"`
}

type addressListNode struct {
	Address addressNode `xml:"Address"`
}

type addressNode struct {
	Type        string `xml:"Type"`
	Name        string `xml:"Name"`
	LastName    string `xml:"LastName"`
	Company     string `xml:"Company"`
	Text        string `xml:"Text"`
	District    string `xml:"District"`
	City        string `xml:"City"`
	PostalCode  string `xml:"PostalCode"`
	Country     string `xml:"Country"`
	PhoneNumber string `xml:"PhoneNumber"`
}

type transactionNode struct {
	Type                  string       `xml:"Type"`
	InstallmentCnt        string       `xml:"InstallmentCnt"`
	Amount                string       `xml:"Amount"`
	CurrencyCode          string       `xml:"CurrencyCode"`
	CardholderPresentCode string       `xml:"CardholderPresentCode"`
	MotoInd               string       `xml:"MotoInd"`
	Secure3D              secure3DNode `xml:"Secure3D"`
}

type secure3DNode struct {
	AuthenticationCode string `xml:"AuthenticationCode"`
	SecurityLevel      string `xml:"SecurityLevel"`
	TxnID              string `xml:"TxnID"`
	Md                 string `xml:"Md"`
}

// BuildCallbackXML builds the callback-confirmation document from the
// provider-returned notification fields.
func (b *RequestBuilder) BuildCallbackXML(n *ports.Notification) ([]byte, error) {
	return b.marshalGVPS(n)
}

// BuildQueryXML builds a status-query document for the transaction:
// the same document shape with txntype orderhistoryinq and a
// synthesized notification payload.
func (b *RequestBuilder) BuildQueryXML(tx *domain.Transaction) ([]byte, error) {
	currencyCode, err := CurrencyCode(tx.Currency)
	if err != nil {
		return nil, err
	}

	n := &ports.Notification{
		OrderID:          tx.ProviderReference(),
		ClientID:         b.cfg.TerminalID,
		TxnAmount:        MinorUnits(tx.Amount),
		TxnCurrencyCode:  currencyCode,
		TxnType:          txnTypeQuery,
		InstallmentCount: "",
		CustomerIP:       "127.0.0.1",
		CustomerEmail:    tx.FirstEmail(),
		ProvUserID:       b.cfg.ProvUser,
		UserID:           b.cfg.TerminalID,
		MerchantID:       b.cfg.MerchantID,
	}
	return b.marshalGVPS(n)
}

func (b *RequestBuilder) marshalGVPS(n *ports.Notification) ([]byte, error) {
	doc := GVPSRequest{
		Mode:        b.cfg.Mode,
		Version:     gvpsVersion,
		ChannelCode: "",
		Terminal: terminalNode{
			ProvUserID: n.ProvUserID,
			HashData:   b.hasher.CallbackHash(n.OrderID, n.ClientID, n.TxnAmount),
			UserID:     n.UserID,
			ID:         n.ClientID,
			MerchantID: n.MerchantID,
		},
		Customer: customerNode{
			IPAddress:    n.CustomerIP,
			EmailAddress: n.CustomerEmail,
		},
		Card: cardNode{},
		Order: orderNode{
			OrderID: n.OrderID,
			GroupID: "",
			AddressList: addressListNode{
				Address: addressNode{Type: "B"},
			},
		},
		Transaction: transactionNode{
			Type:                  n.TxnType,
			InstallmentCnt:        n.InstallmentCount,
			Amount:                n.TxnAmount,
			CurrencyCode:          n.TxnCurrencyCode,
			CardholderPresentCode: "13",
			MotoInd:               "N",
			Secure3D: secure3DNode{
				AuthenticationCode: n.CAVV,
				SecurityLevel:      n.ECI,
				TxnID:              n.XID,
				Md:                 n.MD,
			},
		},
	}

	body, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("marshaling GVPS request: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// ParseNotification maps the flat redirect payload the provider sends
// through the payer's browser onto a Notification.
func (b *RequestBuilder) ParseNotification(values url.Values) (*ports.Notification, error) {
	orderID := values.Get("oid")
	if orderID == "" {
		orderID = values.Get("orderid")
	}
	if orderID == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationFailed, "notification is missing the order id")
	}

	return &ports.Notification{
		OrderID:          orderID,
		ClientID:         values.Get("clientid"),
		TxnAmount:        values.Get("txnamount"),
		TxnCurrencyCode:  values.Get("txncurrencycode"),
		TxnType:          values.Get("txntype"),
		InstallmentCount: values.Get("txninstallmentcount"),
		CustomerIP:       values.Get("customeripaddress"),
		CustomerEmail:    values.Get("customeremailaddress"),
		ProvUserID:       values.Get("terminalprovuserid"),
		UserID:           values.Get("terminaluserid"),
		MerchantID:       values.Get("terminalmerchantid"),
		CAVV:             values.Get("cavv"),
		ECI:              values.Get("eci"),
		XID:              values.Get("xid"),
		MD:               values.Get("md"),
		ErrorMessage:     values.Get("mderrormessage"),
	}, nil
}
