// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"testing"
)

func TestHasher_SumMatchesHMAC(t *testing.T) {
	h := NewHasher("secret-key")
	data := []byte(`{"changes":[]}`)

	mac := hmac.New(sha256.New, []byte("secret-key"))
	mac.Write(data)
	expected := mac.Sum(nil)

	if got := h.Sum(data); !bytes.Equal(got, expected) {
		t.Fatalf("unexpected hash value\nwant: %x\ngot:  %x", expected, got)
	}
	if got := h.SumHex(data); got != hex.EncodeToString(expected) {
		t.Fatalf("unexpected hex digest %s", got)
	}
}

func TestHasher_Verify(t *testing.T) {
	h := NewHasher("secret-key")
	data := []byte("payload")
	sum := h.SumHex(data)

	if !h.Verify(data, sum) {
		t.Error("expected digest to verify")
	}
	if h.Verify([]byte("tampered"), sum) {
		t.Error("expected tampered payload to fail")
	}
	if h.Verify(data, "zz-not-hex") {
		t.Error("expected malformed digest to fail")
	}
}

func TestHasher_DisabledAcceptsEverything(t *testing.T) {
	h := NewHasher("")
	if h.Enabled() {
		t.Fatal("expected hasher without key to be disabled")
	}
	if !h.Verify([]byte("anything"), "") {
		t.Error("expected disabled hasher to verify any input")
	}

	var nilHasher *Hasher
	if nilHasher.Enabled() {
		t.Error("expected nil hasher to be disabled")
	}
}

func TestHasher_ConcurrentUse(t *testing.T) {
	h := NewHasher("k")
	want := h.SumHex([]byte("same"))

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := h.SumHex([]byte("same")); got != want {
				t.Errorf("got %s, want %s", got, want)
			}
		}()
	}
	wg.Wait()
}

func TestHashString_MatchesHasher(t *testing.T) {
	if HashString("data", "key") != NewHasher("key").SumHex([]byte("data")) {
		t.Error("HashString and Hasher must agree")
	}
}
