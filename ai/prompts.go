package ai

import (
	"fmt"
	"strings"

	"dbassist/config"
)

const htmlFormattingRules = `RESPONSE FORMATTING INSTRUCTIONS:
- Use HTML formatting in your responses for better readability in the web interface
- Use <strong> or <b> tags for emphasis and important information
- Use <ul> and <li> tags for lists
- Use <p> tags for paragraphs
- Include a concise summary at the beginning of your analysis
- Use appropriate headings with <h4> tags for different sections
- Keep your responses concise and focused`

// DBSystemInstruction builds the system instruction for a database-query
// conversation. The schema context is embedded verbatim; database-specific
// query rules are re-derived from the active database id on every call.
func DBSystemInstruction(context string, database string) string {
	var b strings.Builder
	b.WriteString("You are a helpful AI assistant that specializes in database interactions using SQL Server.\n")
	b.WriteString("You're providing assistance through a web application that allows users to query the database.\n\n")
	b.WriteString("CRITICAL INSTRUCTION: When the user asks ANY question about data, users, records, or information ")
	b.WriteString("that would be stored in a database, you MUST ALWAYS generate an SQL query to retrieve that information. ")
	b.WriteString("DO NOT say that you cannot query the database - you CAN and SHOULD generate SQL queries for any data-related question.\n\n")
	b.WriteString("You have access to the following context that defines the database structure:\n")
	b.WriteString(context)
	b.WriteString("\n\n")
	b.WriteString("When asked about ANY data that might be in the database, ALWAYS:\n")
	b.WriteString("1. Generate an appropriate SQL query to answer the question\n")
	b.WriteString("2. Format the SQL query in a code block with ```sql tags\n")
	b.WriteString("3. The query will be executed automatically and results will be provided to you\n")
	b.WriteString("4. Then analyze the results and provide a clear, concise answer\n\n")
	b.WriteString("SQL query tips for SQL Server:\n")
	b.WriteString("- Use TOP clause for limiting results: SELECT TOP 10 * FROM Users\n")
	b.WriteString("- Use square brackets for table/column names with spaces: [User Name]\n")
	b.WriteString("- Use COUNT(*) for counting rows\n")
	b.WriteString("- JOIN syntax: SELECT u.Name FROM Users u JOIN Orders o ON u.UserId = o.UserId\n\n")

	if config.IsRestrictedDatabase(database) {
		b.WriteString(config.AttendanceFilterRule)
		b.WriteString("\n\n")
	}
	b.WriteString(config.LikeMatchingRule)
	b.WriteString("\n\n")
	b.WriteString(htmlFormattingRules)

	return b.String()
}

// FileAnalysisSystemInstruction builds the static system instruction for a
// file-analysis conversation.
func FileAnalysisSystemInstruction() string {
	var b strings.Builder
	b.WriteString("You are a helpful AI assistant that specializes in analyzing and explaining data from Excel and CSV files.\n\n")
	b.WriteString("Focus on:\n")
	b.WriteString("1. Understanding data patterns and trends\n")
	b.WriteString("2. Providing clear statistical insights\n")
	b.WriteString("3. Explaining relationships between variables\n")
	b.WriteString("4. Helping users understand their data through clear explanations\n\n")
	b.WriteString("When analyzing data, always:\n")
	b.WriteString("1. Start with an overview of what you see in the data\n")
	b.WriteString("2. Point out any interesting patterns, outliers, or anomalies\n")
	b.WriteString("3. Suggest possible interpretations or conclusions\n")
	b.WriteString("4. Answer the user's specific questions about their data\n\n")
	b.WriteString(htmlFormattingRules)
	b.WriteString("\n\nRemember: You are analyzing a file, NOT querying a database. Do not generate SQL code.")
	return b.String()
}

// InterpretDirectSQLPrompt asks the model to summarize the result of a query
// the user typed themselves.
func InterpretDirectSQLPrompt(query string, result string) string {
	return fmt.Sprintf("The SQL query '%s' returned the following results:\n\n%s\n\n"+
		"Please analyze these results and provide a concise interpretation. "+
		"Use HTML formatting for better readability. Start with a brief summary.",
		query, result)
}

// InterpretResultsPrompt asks the model to analyze the result of a query it
// generated itself.
func InterpretResultsPrompt(result string) string {
	return fmt.Sprintf("The SQL query returned the following results:\n\n%s\n\n"+
		"Please analyze these results and provide a concise, meaningful interpretation. "+
		"Use HTML formatting for better readability. Start with a brief summary.",
		result)
}

// QueryFailedPrompt asks the model to recover from a failed execution.
func QueryFailedPrompt(errMessage string) string {
	return fmt.Sprintf("The SQL query failed with error: %s\n\n"+
		"Please suggest an alternative query or explain what might be wrong. "+
		"Format your response with HTML tags for better readability.",
		errMessage)
}

// NudgePrompt explicitly asks for a SQL query when a data-related question
// produced a reply with no fenced SQL block.
func NudgePrompt(message string) string {
	return fmt.Sprintf("The user's question appears to be about data in the database. "+
		"Please generate an SQL query to answer this question: '%s'. "+
		"Format the query in a code block with ```sql tags. "+
		"If you're absolutely certain this doesn't require database access, explain why.",
		message)
}

// FileUploadPrompt introduces an uploaded file summary to the conversation.
func FileUploadPrompt(fileSummary string) string {
	return fmt.Sprintf("The user has uploaded a file. Here is information about the file:\n\n%s\n\n"+
		"Please analyze this data and provide insights. "+
		"Focus on helping the user understand patterns, insights, and statistics from this data.",
		fileSummary)
}
