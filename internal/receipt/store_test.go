package receipt

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func testRecord(name string) Record {
	return Record{
		Date:             "2024-01-15",
		CompanyName:      "Test Mart",
		Category:         "Groceries",
		MealType:         "N/A",
		Cost:             10,
		OriginalFileName: name,
	}
}

var _ = Describe("Store", func() {
	var store *Store

	BeforeEach(func() {
		store = NewStore()
	})

	Describe("Append", func() {
		It("should start empty with no previewed record", func() {
			Expect(store.Len()).To(BeZero())
			Expect(store.Cursor()).To(Equal(-1))
		})

		It("should move the cursor to each newly appended record", func() {
			Expect(store.Append(testRecord("a.jpg"))).To(Equal(0))
			Expect(store.Cursor()).To(Equal(0))
			Expect(store.Append(testRecord("b.jpg"))).To(Equal(1))
			Expect(store.Cursor()).To(Equal(1))
		})

		It("should keep insertion order", func() {
			store.Append(testRecord("a.jpg"))
			store.Append(testRecord("b.jpg"))
			records := store.Records()
			Expect(records[0].OriginalFileName).To(Equal("a.jpg"))
			Expect(records[1].OriginalFileName).To(Equal("b.jpg"))
		})
	})

	Describe("EditField", func() {
		BeforeEach(func() {
			store.Append(testRecord("a.jpg"))
		})

		It("should store text fields verbatim", func() {
			Expect(store.EditField(0, "companyName", "  Joe's Café ")).To(Succeed())
			rec, _ := store.Record(0)
			Expect(rec.CompanyName).To(Equal("  Joe's Café "))
		})

		It("should accept any string for category and mealType", func() {
			Expect(store.EditField(0, "category", "definitely-not-in-the-vocabulary")).To(Succeed())
			Expect(store.EditField(0, "mealType", "Second Breakfast")).To(Succeed())
			rec, _ := store.Record(0)
			Expect(rec.Category).To(Equal("definitely-not-in-the-vocabulary"))
			Expect(rec.MealType).To(Equal("Second Breakfast"))
		})

		It("should parse a valid cost", func() {
			Expect(store.EditField(0, "cost", "12.5")).To(Succeed())
			rec, _ := store.Record(0)
			Expect(rec.Cost).To(Equal(12.5))
		})

		It("should coerce an invalid cost to zero", func() {
			Expect(store.EditField(0, "cost", "abc")).To(Succeed())
			rec, _ := store.Record(0)
			Expect(rec.Cost).To(BeZero())
		})

		It("should coerce an empty cost to zero", func() {
			Expect(store.EditField(0, "cost", "")).To(Succeed())
			rec, _ := store.Record(0)
			Expect(rec.Cost).To(BeZero())
		})

		It("should absorb unknown field names silently", func() {
			Expect(store.EditField(0, "nonsense", "value")).To(Succeed())
		})

		It("should reject an out-of-range index", func() {
			Expect(store.EditField(3, "date", "2024-01-01")).To(MatchError(ErrIndexOutOfRange))
		})
	})

	Describe("Delete", func() {
		BeforeEach(func() {
			for i := 0; i < 4; i++ {
				store.Append(testRecord(fmt.Sprintf("%d.jpg", i)))
			}
			// cursor is 3 after the appends
		})

		It("should compact the sequence", func() {
			Expect(store.Delete(1)).To(Succeed())
			Expect(store.Len()).To(Equal(3))
			records := store.Records()
			Expect(records[0].OriginalFileName).To(Equal("0.jpg"))
			Expect(records[1].OriginalFileName).To(Equal("2.jpg"))
			Expect(records[2].OriginalFileName).To(Equal("3.jpg"))
		})

		It("should decrement the cursor when deleting before it", func() {
			Expect(store.Delete(0)).To(Succeed())
			Expect(store.Cursor()).To(Equal(2))
		})

		It("should leave the cursor alone when deleting after it", func() {
			store.CursorPrev() // cursor 2
			Expect(store.Delete(3)).To(Succeed())
			Expect(store.Cursor()).To(Equal(2))
		})

		It("should clamp the cursor when deleting the last record at the cursor", func() {
			Expect(store.Delete(3)).To(Succeed())
			Expect(store.Cursor()).To(Equal(2))
		})

		It("should keep the cursor index when deleting at the cursor mid-sequence", func() {
			store.CursorPrev()
			store.CursorPrev() // cursor 1
			Expect(store.Delete(1)).To(Succeed())
			Expect(store.Cursor()).To(Equal(1))
		})

		It("should reset the cursor when the store empties", func() {
			for i := 0; i < 4; i++ {
				Expect(store.Delete(0)).To(Succeed())
			}
			Expect(store.Len()).To(BeZero())
			Expect(store.Cursor()).To(Equal(-1))
		})

		It("should reject an out-of-range index", func() {
			Expect(store.Delete(9)).To(MatchError(ErrIndexOutOfRange))
		})
	})

	Describe("cursor navigation", func() {
		When("the store is empty", func() {
			It("should stay at -1", func() {
				Expect(store.CursorNext()).To(Equal(-1))
				Expect(store.CursorPrev()).To(Equal(-1))
			})
		})

		When("the store has one record", func() {
			BeforeEach(func() {
				store.Append(testRecord("a.jpg"))
			})

			It("should wrap onto itself", func() {
				Expect(store.CursorNext()).To(Equal(0))
				Expect(store.CursorPrev()).To(Equal(0))
			})
		})

		When("the store has several records", func() {
			BeforeEach(func() {
				for i := 0; i < 3; i++ {
					store.Append(testRecord(fmt.Sprintf("%d.jpg", i)))
				}
			})

			It("should wrap next from the last record to the first", func() {
				Expect(store.Cursor()).To(Equal(2))
				Expect(store.CursorNext()).To(Equal(0))
			})

			It("should wrap prev from the first record to the last", func() {
				store.CursorNext() // cursor 0
				Expect(store.CursorPrev()).To(Equal(2))
			})

			It("should step through records in both directions", func() {
				store.CursorNext() // 0
				Expect(store.CursorNext()).To(Equal(1))
				Expect(store.CursorPrev()).To(Equal(0))
			})
		})
	})

	Describe("edit sessions", func() {
		BeforeEach(func() {
			store.Append(testRecord("a.jpg"))
		})

		It("should have no pending session initially", func() {
			Expect(store.PendingEdit()).To(BeNil())
		})

		It("should apply the pending value on commit", func() {
			Expect(store.BeginEdit(0, "cost")).To(Succeed())
			Expect(store.CommitEdit("19.99")).To(Succeed())
			rec, _ := store.Record(0)
			Expect(rec.Cost).To(Equal(19.99))
			Expect(store.PendingEdit()).To(BeNil())
		})

		It("should drop the session on cancel", func() {
			Expect(store.BeginEdit(0, "companyName")).To(Succeed())
			store.CancelEdit()
			Expect(store.PendingEdit()).To(BeNil())
			rec, _ := store.Record(0)
			Expect(rec.CompanyName).To(Equal("Test Mart"))
		})

		It("should replace a previous session when a new edit begins", func() {
			Expect(store.BeginEdit(0, "companyName")).To(Succeed())
			Expect(store.BeginEdit(0, "category")).To(Succeed())
			Expect(store.PendingEdit().FieldName).To(Equal("category"))
		})

		It("should fail to commit without a session", func() {
			Expect(store.CommitEdit("x")).To(MatchError(ErrNoEditSession))
		})

		It("should reject a session on a missing record", func() {
			Expect(store.BeginEdit(7, "date")).To(MatchError(ErrIndexOutOfRange))
		})
	})

	Describe("busy flag and error slot", func() {
		It("should gate concurrent batches", func() {
			Expect(store.BeginBatch()).To(Succeed())
			Expect(store.BeginBatch()).To(MatchError(ErrBusy))
			store.EndBatch()
			Expect(store.BeginBatch()).To(Succeed())
		})

		It("should keep only the latest error", func() {
			store.SetError("first failure")
			store.SetError("second failure")
			Expect(store.LastError()).To(Equal("second failure"))
		})
	})

	Describe("Reset", func() {
		BeforeEach(func() {
			store.Append(testRecord("a.jpg"))
			store.Append(testRecord("b.jpg"))
			Expect(store.BeginEdit(0, "cost")).To(Succeed())
			store.SetError("boom")
			Expect(store.BeginBatch()).To(Succeed())
		})

		It("should clear records, cursor, edit session and flags", func() {
			store.Reset()
			state := store.State()
			Expect(state.Length).To(BeZero())
			Expect(state.Cursor).To(Equal(-1))
			Expect(state.Busy).To(BeFalse())
			Expect(state.LastError).To(BeEmpty())
			Expect(store.PendingEdit()).To(BeNil())
		})
	})
})
