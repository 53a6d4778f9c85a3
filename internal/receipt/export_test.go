package receipt

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func exportRecord(name string, original []byte) Record {
	return Record{
		Date:        "2024-01-05",
		CompanyName: "Joe's Café",
		Category:    "Restaurant",
		MealType:    "Lunch",
		Cost:        12.5,
		OriginalFileData: FileData{
			Base64:   base64.StdEncoding.EncodeToString(original),
			MimeType: "image/jpeg",
		},
		OriginalFileName: name,
	}
}

func readArchive(data []byte) map[string][]byte {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	Expect(err).NotTo(HaveOccurred())

	entries := make(map[string][]byte)
	for _, f := range reader.File {
		rc, err := f.Open()
		Expect(err).NotTo(HaveOccurred())
		content, err := io.ReadAll(rc)
		rc.Close()
		Expect(err).NotTo(HaveOccurred())
		entries[f.Name] = content
	}
	return entries
}

var _ = Describe("ExportArchive", func() {
	var (
		store   *Store
		service *Service
	)

	BeforeEach(func() {
		store = NewStore()
		service = NewService(store, newMockNormalizer(), newMockExtractor())
	})

	When("the store is empty", func() {
		It("should fail with ErrNoRecords", func() {
			data, err := service.ExportArchive()
			Expect(err).To(MatchError(ErrNoRecords))
			Expect(data).To(BeNil())
		})
	})

	When("the store holds one record", func() {
		BeforeEach(func() {
			store.Append(exportRecord("img.jpg", []byte("original jpeg bytes")))
		})

		It("should produce a readable zip", func() {
			data, err := service.ExportArchive()
			Expect(err).NotTo(HaveOccurred())
			entries := readArchive(data)
			Expect(entries).To(HaveLen(1))
		})

		It("should name the entry from the sanitized fields", func() {
			data, err := service.ExportArchive()
			Expect(err).NotTo(HaveOccurred())
			entries := readArchive(data)
			Expect(entries).To(HaveKey("2024-01-05_Joes_Caf_Restaurant_Lunch_12_50.jpg"))
		})

		It("should store the exact original bytes", func() {
			data, err := service.ExportArchive()
			Expect(err).NotTo(HaveOccurred())
			entries := readArchive(data)
			Expect(entries["2024-01-05_Joes_Caf_Restaurant_Lunch_12_50.jpg"]).To(Equal([]byte("original jpeg bytes")))
		})
	})

	When("records collide on the generated name", func() {
		BeforeEach(func() {
			store.Append(exportRecord("img.jpg", []byte("first")))
			store.Append(exportRecord("other.jpg", []byte("second")))
		})

		It("should keep a single entry with the later record's bytes", func() {
			data, err := service.ExportArchive()
			Expect(err).NotTo(HaveOccurred())
			entries := readArchive(data)
			Expect(entries).To(HaveLen(1))
			Expect(entries["2024-01-05_Joes_Caf_Restaurant_Lunch_12_50.jpg"]).To(Equal([]byte("second")))
		})
	})

	When("a record's original bytes are not valid base64", func() {
		BeforeEach(func() {
			rec := exportRecord("img.jpg", []byte("x"))
			rec.OriginalFileData.Base64 = "not base64!!!"
			store.Append(rec)
		})

		It("should fail without producing an archive", func() {
			data, err := service.ExportArchive()
			Expect(err).To(HaveOccurred())
			Expect(data).To(BeNil())
		})
	})
})

var _ = Describe("entryName", func() {
	It("should build the documented example name", func() {
		rec := exportRecord("img.jpg", nil)
		Expect(entryName(rec)).To(Equal("2024-01-05_Joes_Caf_Restaurant_Lunch_12_50.jpg"))
	})

	It("should keep hyphens in the date but not elsewhere", func() {
		rec := exportRecord("img.jpg", nil)
		rec.Date = "2024/01/05"
		rec.CompanyName = "Coca-Cola Store"
		Expect(entryName(rec)).To(Equal("2024_01_05_CocaCola_Store_Restaurant_Lunch_12_50.jpg"))
	})

	It("should use 0_00 for a zero cost", func() {
		rec := exportRecord("img.jpg", nil)
		rec.Cost = 0
		Expect(entryName(rec)).To(Equal("2024-01-05_Joes_Caf_Restaurant_Lunch_0_00.jpg"))
	})

	It("should format whole-number costs with two decimals", func() {
		rec := exportRecord("img.jpg", nil)
		rec.Cost = 7
		Expect(entryName(rec)).To(Equal("2024-01-05_Joes_Caf_Restaurant_Lunch_7_00.jpg"))
	})

	It("should yield an empty extension when the source had none", func() {
		rec := exportRecord("scan", nil)
		Expect(entryName(rec)).To(Equal("2024-01-05_Joes_Caf_Restaurant_Lunch_12_50."))
	})

	It("should recover the extension after the last dot", func() {
		rec := exportRecord("receipt.backup.pdf", nil)
		Expect(entryName(rec)).To(HaveSuffix(".pdf"))
	})
})
