package memory_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papervec/papervec/pkg/store"
	"github.com/papervec/papervec/pkg/store/memory"
	testutils "github.com/papervec/papervec/pkg/utils/test"
)

var _ = Describe("Store", func() {
	var (
		s   *memory.Store
		ctx context.Context
	)

	BeforeEach(func() {
		var err error
		s, err = memory.New(memory.Config{Root: "mem"}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
	})

	Describe("Interface compliance", func() {
		It("should implement store.Store", func() {
			var _ store.Store = (*memory.Store)(nil)
		})
	})

	Describe("Initialize", func() {
		It("should confirm readiness", func() {
			msg, err := s.Initialize(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg).To(ContainSubstring("ready"))
		})
	})

	Describe("AddChunks and Count", func() {
		It("should round-trip the chunk count", func() {
			n, err := s.AddChunks(ctx, "paper-1", testutils.Chunks(
				testutils.UnitVector(4, 0),
				testutils.UnitVector(4, 1),
			))
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(2))

			count, err := s.Count(ctx, "paper-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(2)))
		})

		It("should create an empty table for an empty chunk list", func() {
			n, err := s.AddChunks(ctx, "empty-doc", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())

			has, err := s.HasDocument(ctx, "empty-doc")
			Expect(err).NotTo(HaveOccurred())
			Expect(has).To(BeTrue())
		})

		It("should overwrite wholesale on repeated writes", func() {
			_, err := s.AddChunks(ctx, "paper-1", testutils.Chunks(
				testutils.UnitVector(4, 0),
				testutils.UnitVector(4, 1),
				testutils.UnitVector(4, 2),
			))
			Expect(err).NotTo(HaveOccurred())

			_, err = s.AddChunks(ctx, "paper-1", testutils.Chunks(testutils.UnitVector(4, 3)))
			Expect(err).NotTo(HaveOccurred())

			count, err := s.Count(ctx, "paper-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})

		It("should collide punctuation-only id differences onto one table", func() {
			_, err := s.AddChunks(ctx, "doc-1", testutils.Chunks(
				testutils.UnitVector(4, 0),
				testutils.UnitVector(4, 1),
			))
			Expect(err).NotTo(HaveOccurred())

			_, err = s.AddChunks(ctx, "doc_1", testutils.Chunks(testutils.UnitVector(4, 2)))
			Expect(err).NotTo(HaveOccurred())

			count, err := s.Count(ctx, "doc-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})

		It("should reject mixed dimensionalities", func() {
			_, err := s.AddChunks(ctx, "paper-1", []store.Chunk{
				{ID: "a", Vector: []float32{1, 0}},
				{ID: "b", Vector: []float32{1, 0, 0}},
			})
			Expect(err).To(MatchError(store.ErrSchema))
		})
	})

	Describe("Search", func() {
		BeforeEach(func() {
			_, err := s.AddChunks(ctx, "doc1", []store.Chunk{
				{ID: "a", Text: "alpha", Vector: []float32{1, 0, 0, 0}},
				{ID: "b", Text: "beta", Vector: []float32{0, 1, 0, 0}},
				{ID: "c", Text: "gamma", Vector: []float32{0, 0, 1, 0}},
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return the exact match first with distance 0 and score 1", func() {
			results, err := s.Search(ctx, "doc1", []float32{1, 0, 0, 0}, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))

			Expect(results[0].ID).To(Equal("a"))
			Expect(results[0].Distance).To(BeNumerically("~", 0, 1e-6))
			Expect(results[0].Score).To(BeNumerically("~", 1.0, 1e-6))

			Expect(results[1].Distance).To(BeNumerically("~", math.Sqrt2, 1e-5))
			Expect(results[1].Score).To(BeNumerically("~", 1.0/(1.0+math.Sqrt2), 1e-5))
		})

		It("should order by ascending distance", func() {
			results, err := s.Search(ctx, "doc1", []float32{0.9, 0.1, 0, 0}, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
			for i := 1; i < len(results); i++ {
				Expect(results[i-1].Distance).To(BeNumerically("<=", results[i].Distance))
			}
		})

		It("should cap results at topK and return all rows otherwise", func() {
			results, err := s.Search(ctx, "doc1", []float32{1, 0, 0, 0}, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))

			results, err = s.Search(ctx, "doc1", []float32{1, 0, 0, 0}, 50)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
		})

		It("should return an empty slice for an empty table", func() {
			_, err := s.AddChunks(ctx, "empty-doc", nil)
			Expect(err).NotTo(HaveOccurred())

			results, err := s.Search(ctx, "empty-doc", make([]float32, store.DefaultDimensions), 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())
		})

		It("should reject a query vector of the wrong dimensionality", func() {
			_, err := s.Search(ctx, "doc1", []float32{1}, 5)
			Expect(err).To(MatchError(store.ErrSchema))
		})

		It("should return ErrNotFound for a document never written", func() {
			_, err := s.Search(ctx, "never-written", []float32{1, 0, 0, 0}, 5)
			Expect(err).To(MatchError(store.ErrNotFound))
		})
	})

	Describe("Delete and ClearAll", func() {
		It("should delete an existing document and error on a missing one", func() {
			_, err := s.AddChunks(ctx, "paper-1", testutils.Chunks(testutils.UnitVector(4, 0)))
			Expect(err).NotTo(HaveOccurred())

			_, err = s.DeleteDocument(ctx, "paper-1")
			Expect(err).NotTo(HaveOccurred())

			_, err = s.DeleteDocument(ctx, "paper-1")
			Expect(err).To(MatchError(store.ErrNotFound))
		})

		It("should clear every table", func() {
			_, err := s.AddChunks(ctx, "paper-1", testutils.Chunks(testutils.UnitVector(4, 0)))
			Expect(err).NotTo(HaveOccurred())
			_, err = s.AddChunks(ctx, "paper-2", testutils.Chunks(testutils.UnitVector(4, 1)))
			Expect(err).NotTo(HaveOccurred())

			_, err = s.ClearAll(ctx)
			Expect(err).NotTo(HaveOccurred())

			has, err := s.HasDocument(ctx, "paper-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(has).To(BeFalse())
		})
	})
})
