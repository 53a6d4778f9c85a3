package scanning

import "context"

// ReceiptFields contains the structured fields extracted from a receipt image
type ReceiptFields struct {
	Date        string  `json:"date"` // ISO 8601 format
	CompanyName string  `json:"companyName"`
	Category    string  `json:"category"`
	MealType    string  `json:"mealType"`
	Cost        float64 `json:"cost"`
}

// Extractor defines the interface for receipt field extraction backends
type Extractor interface {
	// Extract analyzes a JPEG receipt image and returns the extracted fields
	Extract(ctx context.Context, imageJPEG []byte) (*ReceiptFields, error)
	// Close closes the extractor and releases resources
	Close() error
}

// receiptPrompt is the shared prompt used by all extraction backends
const receiptPrompt = `You are analyzing a receipt image. Carefully read all text in the image and extract the following information:

1. **date**: The transaction or purchase date, converted to ISO 8601 format (YYYY-MM-DD). Common source formats: MM/DD/YYYY, DD/MM/YYYY, or written dates.

2. **companyName**: The merchant, store, or business name. This is usually the largest text or in a header at the top of the receipt.

3. **category**: The expense category. Choose the best fit from: "Restaurant", "Groceries", "Travel", "Entertainment", "Office Supplies", "Other".

4. **mealType**: If the receipt is for food, one of: "Breakfast", "Lunch", "Dinner", "Snack". Use "N/A" if it is not a meal.

5. **cost**: The final total, grand total, or amount due, as a number (e.g., 42.75 for $42.75). This is usually at the bottom of the receipt, often labeled "TOTAL", "Amount Due", or similar.

Return ONLY valid JSON in this exact format:
{
  "date": "YYYY-MM-DD",
  "companyName": "Store Name",
  "category": "Restaurant",
  "mealType": "Lunch",
  "cost": 0.00
}

Important:
- All five fields must always be present
- If you cannot determine a text field, use the string "N/A"
- If you cannot determine the cost, use the number 0
- The cost must be a number (not a string)
- Do not include any text before or after the JSON
- Do not use markdown code blocks`
