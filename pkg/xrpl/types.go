package xrpl

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	// SuccessCode is the result code of an applied transaction.
	SuccessCode = "tesSUCCESS"
	// CodeExpired is reported when LastLedgerSequence passed before the
	// transaction was validated. The transaction can no longer succeed.
	CodeExpired = "tefMAX_LEDGER"

	DefaultPollInterval        = time.Second
	DefaultLedgerOffset uint32 = 20
	accountNFTsPageLimit       = 400
)

// Config configures a Client.
type Config struct {
	Network    string
	URL        string
	HTTPClient *http.Client
	Headers    map[string]string
	// PollInterval is the delay between tx polls while awaiting finality.
	PollInterval time.Duration
	// MaxPolls bounds the number of tx polls. Zero polls until the
	// transaction validates, expires or ctx ends.
	MaxPolls int
	// LedgerOffset is added to the current ledger index to form
	// LastLedgerSequence.
	LedgerOffset uint32
	Logger       *zerolog.Logger
}

// RPCError is an error reported by the server in a JSON-RPC result.
type RPCError struct {
	Method  string
	Name    string
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s", e.Method, e.Name)
	}
	return fmt.Sprintf("%s: %s: %s", e.Method, e.Name, e.Message)
}

type rpcRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

type rpcEnvelope struct {
	Result json.RawMessage `json:"result"`
}

type rpcStatus struct {
	Status       string `json:"status"`
	Error        string `json:"error"`
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type serverInfoResult struct {
	Info struct {
		BuildVersion    string `json:"build_version"`
		ServerState     string `json:"server_state"`
		NetworkID       uint32 `json:"network_id"`
		ValidatedLedger *struct {
			Seq uint32 `json:"seq"`
		} `json:"validated_ledger"`
	} `json:"info"`
}

type accountInfoResult struct {
	AccountData struct {
		Account  string `json:"Account"`
		Sequence uint32 `json:"Sequence"`
	} `json:"account_data"`
	LedgerCurrentIndex uint32 `json:"ledger_current_index"`
}

type ledgerCurrentResult struct {
	LedgerCurrentIndex uint32 `json:"ledger_current_index"`
}

type submitResult struct {
	EngineResult        string `json:"engine_result"`
	EngineResultMessage string `json:"engine_result_message"`
	TxJSON              struct {
		Hash string `json:"hash"`
	} `json:"tx_json"`
}

type txResult struct {
	Hash        string `json:"hash"`
	Validated   bool   `json:"validated"`
	LedgerIndex uint32 `json:"ledger_index"`
	Meta        *struct {
		TransactionResult string          `json:"TransactionResult"`
		AffectedNodes     json.RawMessage `json:"AffectedNodes"`
	} `json:"meta"`
}

type accountNFT struct {
	NFTokenID    string `json:"NFTokenID"`
	Issuer       string `json:"Issuer"`
	NFTokenTaxon uint32 `json:"NFTokenTaxon"`
	URI          string `json:"URI"`
	Flags        uint32 `json:"Flags"`
}

type accountNFTsResult struct {
	Account     string          `json:"account"`
	AccountNFTs []accountNFT    `json:"account_nfts"`
	Marker      json.RawMessage `json:"marker,omitempty"`
}
