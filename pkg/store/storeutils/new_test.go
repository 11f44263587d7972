package storeutils_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papervec/papervec/pkg/config"
	"github.com/papervec/papervec/pkg/store/memory"
	"github.com/papervec/papervec/pkg/store/sqlitevec"
	"github.com/papervec/papervec/pkg/store/storeutils"
)

var _ = Describe("NewStore", func() {
	var logger *zap.Logger

	BeforeEach(func() {
		logger = zap.NewNop()
	})

	It("should build the sqlite-vec backend by default", func() {
		s, err := storeutils.NewStore(&storeutils.NewStoreOpts{
			Root:   GinkgoT().TempDir(),
			Logger: logger,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(BeAssignableToTypeOf(&sqlitevec.Store{}))
	})

	It("should build the memory backend when asked", func() {
		s, err := storeutils.NewStore(&storeutils.NewStoreOpts{
			Provider: "memory",
			Logger:   logger,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(BeAssignableToTypeOf(&memory.Store{}))

		_, err = s.Initialize(context.Background())
		Expect(err).NotTo(HaveOccurred())
	})

	It("should reject an unknown provider", func() {
		_, err := storeutils.NewStore(&storeutils.NewStoreOpts{
			Provider: "chroma",
			Logger:   logger,
		})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("unsupported store provider"))
	})
})

var _ = Describe("NewStoreFromConfig", func() {
	It("should wire provider and root from the configuration", func() {
		cfg := &config.Config{
			Store: config.StoreConfig{
				Provider: "memory",
				Root:     "unused",
			},
		}

		s, err := storeutils.NewStoreFromConfig(cfg, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(BeAssignableToTypeOf(&memory.Store{}))
	})
})
