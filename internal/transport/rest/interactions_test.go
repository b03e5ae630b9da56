package rest_test

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/workhq/workplace-bot/internal/discord"
	"github.com/workhq/workplace-bot/internal/transport"
	"github.com/workhq/workplace-bot/internal/transport/rest"
)

func TestRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Rest Suite")
}

type mockDispatcher struct {
	received *discord.Interaction
	response *discord.Response
}

func (m *mockDispatcher) Dispatch(ctx context.Context, in *discord.Interaction) *discord.Response {
	m.received = in
	return m.response
}

var _ = Describe("InteractionsHandler", func() {
	var (
		priv       ed25519.PrivateKey
		handler    *rest.InteractionsHandler
		dispatcher *mockDispatcher
	)

	signedRequest := func(body []byte) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader(body))
		timestamp := "1700000000"
		msg := append([]byte(timestamp), body...)
		req.Header.Set("X-Signature-Ed25519", hex.EncodeToString(ed25519.Sign(priv, msg)))
		req.Header.Set("X-Signature-Timestamp", timestamp)
		return req
	}

	BeforeEach(func() {
		pub, key, err := ed25519.GenerateKey(rand.Reader)
		Expect(err).ToNot(HaveOccurred())
		priv = key

		verifier, err := discord.NewVerifier(hex.EncodeToString(pub))
		Expect(err).ToNot(HaveOccurred())

		dispatcher = &mockDispatcher{response: discord.Pong()}
		handler = rest.NewInteractionsHandler(transport.NewBaseHandler(nil), verifier, dispatcher)
	})

	Context("with a valid signature", func() {
		It("should dispatch and return the response", func() {
			body := []byte(`{"type":1}`)
			rec := httptest.NewRecorder()

			handler.HandleInteraction(rec, signedRequest(body))

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(dispatcher.received).ToNot(BeNil())
			Expect(dispatcher.received.Type).To(Equal(discord.InteractionPing))

			var resp discord.Response
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Type).To(Equal(discord.ResponsePong))
		})
	})

	Context("with a bad signature", func() {
		It("should return 401 without dispatching", func() {
			body := []byte(`{"type":1}`)
			req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader(body))
			req.Header.Set("X-Signature-Ed25519", hex.EncodeToString(make([]byte, ed25519.SignatureSize)))
			req.Header.Set("X-Signature-Timestamp", "1700000000")
			rec := httptest.NewRecorder()

			handler.HandleInteraction(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(dispatcher.received).To(BeNil())
		})

		It("should return 401 when the headers are missing", func() {
			body := []byte(`{"type":1}`)
			req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.HandleInteraction(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Context("with a signed but malformed payload", func() {
		It("should return 400", func() {
			rec := httptest.NewRecorder()

			handler.HandleInteraction(rec, signedRequest([]byte("not json")))

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(dispatcher.received).To(BeNil())
		})
	})
})
