package translate

import (
	"context"
	"testing"
	"time"
)

func TestCachedTranslatorHitsCache(t *testing.T) {
	fake := &fakeTranslator{mapping: map[string]string{"Hola": "Hello"}}
	cached := Cached(fake, NewMemoryCache(time.Minute))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		out, err := cached.TranslateSingle(ctx, "Hola", "es", "en")
		if err != nil {
			t.Fatalf("TranslateSingle: %v", err)
		}
		if out != "Hello" {
			t.Fatalf("unexpected translation: %q", out)
		}
	}

	single, _ := fake.calls()
	if single != 1 {
		t.Fatalf("expected one backend call, got %d", single)
	}
}

func TestCachedTranslatorKeyIncludesLanguages(t *testing.T) {
	fake := &fakeTranslator{}
	cached := Cached(fake, NewMemoryCache(time.Minute))
	ctx := context.Background()

	if _, err := cached.TranslateSingle(ctx, "Hola", "es", "en"); err != nil {
		t.Fatalf("TranslateSingle: %v", err)
	}
	if _, err := cached.TranslateSingle(ctx, "Hola", "es", "fr"); err != nil {
		t.Fatalf("TranslateSingle: %v", err)
	}

	single, _ := fake.calls()
	if single != 2 {
		t.Fatalf("expected distinct cache keys per target, got %d calls", single)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	cache := NewMemoryCache(time.Millisecond)
	ctx := context.Background()

	cache.Set(ctx, "k", "v")
	if _, ok := cache.Get(ctx, "k"); !ok {
		t.Fatal("expected fresh entry to hit")
	}

	time.Sleep(5 * time.Millisecond)
	if _, ok := cache.Get(ctx, "k"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestCachedTranslatorConversationPassThrough(t *testing.T) {
	fake := &fakeTranslator{}
	cached := Cached(fake, NewMemoryCache(time.Minute))
	ctx := context.Background()

	turns := []Turn{{Speaker: "Customer", Text: "Hola"}}
	for i := 0; i < 2; i++ {
		if _, err := cached.TranslateConversation(ctx, turns, "es", "en"); err != nil {
			t.Fatalf("TranslateConversation: %v", err)
		}
	}

	_, conv := fake.calls()
	if conv != 2 {
		t.Fatalf("conversation calls must not be cached, got %d", conv)
	}
}
