package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/vncsmyrnk/memebattle/internal/core/domain"
)

const (
	blockchainIDsHeader = "x-blockchain-ids"
	actionVersionHeader = "x-action-version"

	// Monad testnet in CAIP-2 form.
	actionChainID     = 10143
	actionBlockchain  = "eip155:10143"
	actionVersion     = "2.0"
	actionFeeWei      = "1000000000000000"
	actionFeeDisplay  = "0.001 MON"
	actionTransferHex = "0x"
)

// ActionHandler serves the shareable vote action: metadata on GET and a fee
// transfer transaction on POST.
type ActionHandler struct {
	receiver string
}

func NewActionHandler(receiver string) *ActionHandler {
	return &ActionHandler{receiver: receiver}
}

type actionLink struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Href  string `json:"href"`
}

type actionMetadata struct {
	Type        string `json:"type"`
	Icon        string `json:"icon"`
	Label       string `json:"label"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Links       struct {
		Actions []actionLink `json:"actions"`
	} `json:"links"`
}

type actionTransaction struct {
	To      string `json:"to"`
	Value   string `json:"value"`
	ChainID int    `json:"chainId"`
	Data    string `json:"data"`
}

type actionPostResponse struct {
	Type        string `json:"type"`
	Transaction string `json:"transaction"`
	Message     string `json:"message"`
}

func (h *ActionHandler) Options(w http.ResponseWriter, r *http.Request) {
	setActionHeaders(w)
	w.WriteHeader(http.StatusOK)
}

func (h *ActionHandler) Metadata(w http.ResponseWriter, r *http.Request) {
	setActionHeaders(w)
	memeID, choice, ok := actionParams(w, r)
	if !ok {
		return
	}

	label := fmt.Sprintf("%s (%s)", choiceLabel(choice), actionFeeDisplay)
	meta := actionMetadata{
		Type:        "action",
		Icon:        absoluteURL(r, "/logo.svg"),
		Label:       label,
		Title:       "Vote for Meme",
		Description: fmt.Sprintf("Vote %s for this meme. Cost: %s", choiceLabel(choice), actionFeeDisplay),
	}
	meta.Links.Actions = []actionLink{{
		Type:  "transaction",
		Label: label,
		Href:  fmt.Sprintf("/api/actions/vote?memeId=%d&type=%s", memeID, choice),
	}}

	writeJSON(w, http.StatusOK, meta)
}

func (h *ActionHandler) Transaction(w http.ResponseWriter, r *http.Request) {
	setActionHeaders(w)
	memeID, choice, ok := actionParams(w, r)
	if !ok {
		return
	}

	tx, err := json.Marshal(actionTransaction{
		To:      h.receiver,
		Value:   actionFeeWei,
		ChainID: actionChainID,
		Data:    actionTransferHex,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": domain.ErrInternal.Error()})
		return
	}

	writeJSON(w, http.StatusOK, actionPostResponse{
		Type:        "transaction",
		Transaction: string(tx),
		Message:     fmt.Sprintf("Vote %s for Meme #%d - %s", choiceLabel(choice), memeID, actionFeeDisplay),
	})
}

func setActionHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+blockchainIDsHeader+", "+actionVersionHeader)
	w.Header().Set(blockchainIDsHeader, actionBlockchain)
	w.Header().Set(actionVersionHeader, actionVersion)
}

func actionParams(w http.ResponseWriter, r *http.Request) (int, domain.Choice, bool) {
	q := r.URL.Query()
	rawID, rawType := q.Get("memeId"), q.Get("type")
	if rawID == "" || rawType == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "memeId and type are required"})
		return 0, "", false
	}
	memeID, err := strconv.Atoi(rawID)
	if err != nil || memeID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid memeId"})
		return 0, "", false
	}
	choice := domain.Choice(rawType)
	if !choice.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": domain.ErrInvalidChoice.Error()})
		return 0, "", false
	}
	return memeID, choice, true
}

func choiceLabel(c domain.Choice) string {
	if c == domain.ChoiceLike {
		return "👍 Like"
	}
	return "👎 Dislike"
}

func absoluteURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + path
}
