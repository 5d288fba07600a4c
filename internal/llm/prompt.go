package llm

import "fmt"

// SystemPrompt frames the extraction task for the chat model.
func SystemPrompt() string {
	return "You are an expert at extracting structured data from invoice and receipt text. Always return valid JSON."
}

// BuildExtractionPrompt embeds the recognized text and the rigid output
// schema the extractor expects. The currency-symbol guidance matters for
// right-to-left marks such as the shekel sign, which models otherwise merge
// into the number.
func BuildExtractionPrompt(text, fileName string) string {
	return fmt.Sprintf(`Analyze the following invoice/receipt text and extract structured information.

File: %s

Text content:
`+"```\n%s\n```"+`

Extract and return a JSON object with these fields:
{
  "language": "2-letter language code (en, he, etc.)",
  "document_type": "invoice, receipt, or other",
  "supplier_name": "vendor/merchant/supplier name",
  "invoice_number": "invoice or receipt number",
  "invoice_date": "date in YYYY-MM-DD format",
  "currency": "3-letter currency code (USD, ILS, EUR, etc.)",
  "subtotal": numeric value or null,
  "tax_amount": numeric value or null,
  "total": numeric total amount,
  "line_items": [
    {
      "description": "item description",
      "quantity": numeric or null,
      "unit_price": numeric or null,
      "line_total": numeric or null
    }
  ]
}

Important guidelines:
1. Extract amounts as pure numbers (no currency symbols)
2. If a field is not found, use null
3. For dates, convert to ISO format (YYYY-MM-DD)
4. Detect language from the text content
5. Be careful with decimal separators - some locales use comma instead of period
6. For Hebrew text, identify supplier names and numbers carefully
7. Common Hebrew invoice terms: חשבונית (invoice), קבלה (receipt), סכום (amount), מס (tax), ספק (supplier)
8. CRITICAL: The shekel symbol is ₪
   - "₪220.0" means the number 220.0 (not 10220 or 220000)
   - "₪1,234.56" means 1234.56
   - Never merge the currency symbol into the number
   - Extract only the numeric value after the ₪ symbol
9. Examples of correct extraction:
   - Text: "סכום ₪220.0" → total: 220.0
   - Text: "Total $100.50" → total: 100.5
   - Text: "€1,500.00" → total: 1500.0

Return ONLY the JSON object, no additional text.`, fileName, text)
}
