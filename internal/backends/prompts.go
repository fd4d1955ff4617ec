package backends

// Prompt templates for the local LLM strategies. Each takes the document text
// as its single %s argument.
const (
	FinancialPrompt = `You are a financial document expert. Your task is to:
1. Summarize the document in 2-3 lines.
2. Identify and extract financial tables with proper formatting.
3. For each table, briefly explain what it represents (e.g., income statement, balance sheet).
4. Highlight key financial values like revenue, profit/loss, assets, liabilities, etc.

Text:
%s
`

	LegalPrompt = `You are a legal document analyst. Your task is to:
1. Provide a 2-3 line summary of the legal document.
2. Extract key legal clauses such as:
   - Parties involved
   - Agreement terms
   - Duration
   - Termination, jurisdiction, or confidentiality clauses
3. Format clearly using bullet points or sections.

Text:
%s
`

	GeneralPrompt = `You are a structured data expert. Your task is to:
1. Extract any tables from the text clearly.
2. Format tables with proper headers and rows.
3. Mention briefly what each table likely represents (e.g., pricing, schedule).
4. Give the output in a clear Markdown template.

Text:
%s
`

	SmallPrompt = `You are a document analyst. Your task is to:

1. Provide a **brief summary** of the document.
2. Identify and extract the **sections** in the document (like "Introduction", "Lists").
3. Convert each section into **bullet points** (e.g., key items, formatting, or points mentioned).
4. Do not display any page numbers.
Document text:
%s
`
)

// AskSystemPrompt constrains Q&A answers to the stored document text.
const AskSystemPrompt = "You answer questions about a single document. Use only the document content provided. If the answer is not in the document, say that you cannot find it."

const askPrompt = `Document content:
%s

Question: %s
Answer:`
