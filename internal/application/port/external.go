package port

import "context"

// PaymentRequest describes one payable to create with the payment provider.
// Amount is in minor units (cents); ApplicationID is the correlation id the
// provider echoes back so the callback can find its application.
type PaymentRequest struct {
	Amount        int64
	Currency      string
	Description   string
	ApplicationID string
	SuccessURL    string
	CancelURL     string
}

// PaymentSession is the provider's answer: where to send the browser.
type PaymentSession struct {
	SessionID   string
	RedirectURL string
}

// PaymentGateway creates hosted checkout sessions with the payment provider.
// It never performs the browser redirect itself.
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, req PaymentRequest) (*PaymentSession, error)
}

// SignatureRequest describes one document to send for electronic signature.
type SignatureRequest struct {
	DocumentName string
	HTMLContent  string
	SignerName   string
	SignerEmail  string
}

// SignatureClient wraps the digital-signature provider. GetSignedURL
// returns an empty string while the document is not yet signed; that is a
// valid outcome, not an error.
type SignatureClient interface {
	CreateDocument(ctx context.Context, req SignatureRequest) (string, error)
	GetDocumentStatus(ctx context.Context, documentID string) (string, error)
	GetSignedURL(ctx context.Context, documentID string) (string, error)
}
