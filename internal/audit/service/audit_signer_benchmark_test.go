package service

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/gatekeeper/internal/audit/domain"
)

func newBenchmarkLog() *auditDomain.AuditLog {
	principalID := uuid.Must(uuid.NewV7())
	return &auditDomain.AuditLog{
		ID:          uuid.Must(uuid.NewV7()),
		EventType:   "session.login",
		PrincipalID: &principalID,
		SessionID:   "0123456789abcdef0123456789abcdef",
		Metadata:    map[string]any{"ip_address": "10.0.0.1", "user_agent": "curl/8.0"},
		CreatedAt:   time.Now().UTC(),
	}
}

func BenchmarkAuditSigner_Sign(b *testing.B) {
	signer := NewAuditSigner()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		b.Fatal(err)
	}
	log := newBenchmarkLog()

	for b.Loop() {
		if _, err := signer.Sign(key, log); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAuditSigner_Verify(b *testing.B) {
	signer := NewAuditSigner()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		b.Fatal(err)
	}
	log := newBenchmarkLog()
	signature, err := signer.Sign(key, log)
	if err != nil {
		b.Fatal(err)
	}
	log.Signature = signature

	for b.Loop() {
		if err := signer.Verify(key, log); err != nil {
			b.Fatal(err)
		}
	}
}
