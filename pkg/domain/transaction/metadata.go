package transaction

// Metadata carries free-form structured annotations on a transaction, such as
// the gateway transaction id, retry bookkeeping and destination-bank detail.
// Always a structured map, never a hand-edited string.
type Metadata map[string]any

// Well-known metadata keys.
const (
	metaRetryAttempts   = "retryAttempts"
	metaPermanentFail   = "permanentlyFailed"
	metaStuckRecovered  = "stuckRecovered"
	metaWarnings        = "warnings"
	metaFailureReason   = "failureReason"
	metaReversalID      = "reversalId"
	metaReversalReason  = "reversalReason"
	metaGatewayTxID     = "gatewayTransactionId"
	metaGatewayError    = "gatewayError"
	metaDestBankCode    = "destinationBankCode"
	metaDestBankName    = "destinationBankName"
	metaDestAccountName = "destinationAccountName"
	metaManualReview    = "manualReconciliation"
)

func (t *Transaction) meta() Metadata {
	if t.Metadata == nil {
		t.Metadata = Metadata{}
	}
	return t.Metadata
}

// RetryAttempts returns how many sweeper retries have been made.
func (t *Transaction) RetryAttempts() int {
	switch v := t.meta()[metaRetryAttempts].(type) {
	case int:
		return v
	case float64: // JSON round-trip widens to float64
		return int(v)
	default:
		return 0
	}
}

// IncrementRetryAttempts bumps the retry counter and returns the new value.
func (t *Transaction) IncrementRetryAttempts() int {
	n := t.RetryAttempts() + 1
	t.meta()[metaRetryAttempts] = n
	return n
}

// MarkPermanentlyFailed flags the record as beyond retry.
func (t *Transaction) MarkPermanentlyFailed() {
	t.meta()[metaPermanentFail] = true
}

// PermanentlyFailed reports whether retries are exhausted.
func (t *Transaction) PermanentlyFailed() bool {
	v, _ := t.meta()[metaPermanentFail].(bool)
	return v
}

// MarkStuckRecovered flags the record as force-failed by the stuck sweep.
func (t *Transaction) MarkStuckRecovered() {
	t.meta()[metaStuckRecovered] = true
}

// AppendWarnings attaches advisory gate messages to the audit trail.
func (t *Transaction) AppendWarnings(warnings ...string) {
	if len(warnings) == 0 {
		return
	}
	existing, _ := t.meta()[metaWarnings].([]string)
	t.meta()[metaWarnings] = append(existing, warnings...)
}

// Warnings returns the audit-trail warnings.
func (t *Transaction) Warnings() []string {
	switch v := t.meta()[metaWarnings].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, w := range v {
			if s, ok := w.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// SetFailureReason records why processing failed.
func (t *Transaction) SetFailureReason(reason string) {
	t.meta()[metaFailureReason] = reason
}

// SetReversal links the original record to its compensating transaction.
func (t *Transaction) SetReversal(reversalID, reason string) {
	t.meta()[metaReversalID] = reversalID
	t.meta()[metaReversalReason] = reason
}

// ReversalID returns the id of the compensating transaction, if any.
func (t *Transaction) ReversalID() string {
	v, _ := t.meta()[metaReversalID].(string)
	return v
}

// SetGatewayResult records the payment gateway's transaction id or error.
func (t *Transaction) SetGatewayResult(gatewayTxID, gatewayErr string) {
	if gatewayTxID != "" {
		t.meta()[metaGatewayTxID] = gatewayTxID
	}
	if gatewayErr != "" {
		t.meta()[metaGatewayError] = gatewayErr
	}
}

// GatewayTransactionID returns the gateway-assigned id, if any.
func (t *Transaction) GatewayTransactionID() string {
	v, _ := t.meta()[metaGatewayTxID].(string)
	return v
}

// GatewayError returns the recorded gateway failure message, if any.
func (t *Transaction) GatewayError() string {
	v, _ := t.meta()[metaGatewayError].(string)
	return v
}

// GatewaySettled reports whether settlement of this transaction runs through
// the external payment gateway rather than the internal ledger alone.
func (t *Transaction) GatewaySettled() bool {
	return t.DestinationBankCode() != "" || t.GatewayError() != "" || t.GatewayTransactionID() != ""
}

// MarkManualReconciliation flags the record for operations review.
func (t *Transaction) MarkManualReconciliation() {
	t.meta()[metaManualReview] = true
}

// NeedsManualReconciliation reports whether operations must reconcile the
// record by hand.
func (t *Transaction) NeedsManualReconciliation() bool {
	v, _ := t.meta()[metaManualReview].(bool)
	return v
}

// SetDestinationBank records interbank destination detail.
func (t *Transaction) SetDestinationBank(code, name, accountName string) {
	t.meta()[metaDestBankCode] = code
	t.meta()[metaDestBankName] = name
	t.meta()[metaDestAccountName] = accountName
}

// DestinationBankCode returns the interbank destination bank code, if any.
func (t *Transaction) DestinationBankCode() string {
	v, _ := t.meta()[metaDestBankCode].(string)
	return v
}
