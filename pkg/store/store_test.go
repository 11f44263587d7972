package store_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papervec/papervec/pkg/store"
)

var _ = Describe("TableName", func() {
	It("should prefix doc_ and keep alphanumerics", func() {
		Expect(store.TableName("paper42")).To(Equal("doc_paper42"))
	})

	It("should replace every non-alphanumeric character with underscore", func() {
		Expect(store.TableName("2311.18775/v2")).To(Equal("doc_2311_18775_v2"))
	})

	It("should map punctuation-only differences onto the same table", func() {
		// Known ambiguity of the sanitized naming scheme.
		Expect(store.TableName("doc-1")).To(Equal(store.TableName("doc_1")))
	})

	It("should handle an empty document id", func() {
		Expect(store.TableName("")).To(Equal("doc_"))
	})
})

var _ = Describe("ScoreFromDistance", func() {
	It("should map zero distance to a perfect score", func() {
		Expect(store.ScoreFromDistance(0)).To(BeNumerically("==", 1.0))
	})

	It("should decrease monotonically with distance", func() {
		Expect(store.ScoreFromDistance(0.5)).To(BeNumerically(">", store.ScoreFromDistance(2.0)))
	})

	It("should stay within (0, 1]", func() {
		Expect(store.ScoreFromDistance(1e9)).To(BeNumerically(">", 0))
		Expect(store.ScoreFromDistance(1e9)).To(BeNumerically("<", 1))
	})
})
