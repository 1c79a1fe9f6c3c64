package query

// Instruction templates for the language-model round trips. They are data,
// not code: the business rules for classification, Cypher synthesis and
// answer formatting live here and are versioned together.

const promptVersion = "v2"

const classificationPrompt = `You are a classification assistant. Categorize the user query into one of the following:

%s

Rule:
- DATE_RELATED:
  - If asking for latest articles, recent articles, latest news, recent news, new articles, today's news
  - If the query involves statistics or analytics related to music news, such as:
        1. Article counts per author, per day, per month
        2. Percentages of articles by author or topic
        3. Summarization of records
        4. Database field analysis (description field, full_text, etc.)
        5. Any metadata analysis of music news articles
  - Queries asking to "share articles", "show articles", "give me articles", "latest articles", "recent articles"
  - Follow-up queries about article information such as:
        - "source url?", "url?", "link?", "source?"
        - "publication date?", "when was it published?"
        - "author?", "who wrote it?"
        - "more details?", "full article?"
        - Any metadata requests about previously discussed articles

- MUSIC_RELATED:
  - If the query is about music artists, hip-hop artists, songs, albums, genres, awards, charts, news, or articles.
  - If the query is about legal issues or controversies involving artists (lawsuits, scandals, arrests, etc.)
  - Queries about media tone, bias, or sentiment analysis of music articles, including:
        - How the media reports on specific topics in music
        - Tone used in music journalism about technology, AI, or artists
        - Sentiment trends in music-related articles

- GREETING: If the query is a greeting or casual opener (hi, hello, how are you).

Instruction:
- Consider the conversation history when classifying the query.
- Respond with exactly one label: DATE_RELATED, MUSIC_RELATED, GREETING, or OTHER.

Query: %s
Category:`

const greetingPrompt = `Respond naturally and politely to this greeting:

%s

Greeting: %s
Response:`

// cypherRules is the schema contract shared by both synthesis variants.
// The downstream graph store rejects or silently mis-traverses anything
// that violates these rules.
const cypherRules = `Database Schema:
- Article nodes have these properties: title, description, full_text, publication_date (stored as DATE type)
- Author nodes have property: name
- URL nodes have property: url
- Relationships: (Author)-[:WROTE]->(Article), (Article)-[:HAS_URL]->(URL)

CRITICAL SCHEMA RULES:
- publication_date is a PROPERTY on Article nodes (a.publication_date), NOT a separate node or relationship
- NEVER use [:HAS_PUBLICATION_DATE] relationship - it does not exist
- To access publication date, use a.publication_date directly
- Articles have relationships to URLs via HAS_URL relationship: (a:Article)-[:HAS_URL]->(u:URL)
- Articles have relationships to Authors via WROTE relationship: (au:Author)-[:WROTE]->(a:Article)
- ALWAYS use this pattern for author queries: (au:Author)-[:WROTE]->(a:Article)-[:HAS_URL]->(u:URL)
- NEVER use patterns like (Article)-[:HAS_URL]->(URL)<-[:WROTE]-(Author) - this is WRONG
- The correct direction is: Author WROTE Article, Article HAS_URL URL

Notes:
- To count articles per week, use WITH and aggregation, not window functions.
- Do NOT use OVER, PARTITION BY, or any SQL window function syntax.
- Do NOT use SHOW ALL PROPERTIES or any SHOW commands.
- Only use Cypher syntax supported by Neo4j 5.x.
- Neo4j Cypher does not support date.week. To group or compare by week, use date.truncate('week', a.publication_date).`

const cypherSharedInstructions = `Instructions:
- FOCUS ON THE CURRENT QUERY - conversation context is for reference only
- Use exact title matching when possible - if user mentions a specific title, search for articles with that exact title
- For title searches, use CONTAINS for partial matches or = for exact matches
- Records include: title, description, publication_date, and full_text. If user asks about record fields, these are the available fields.
- If the user asks about a person, check if their name appears in any of these fields: title, description, or full_text using CONTAINS.
- If the user gives multiple names (e.g., "Kanye West or Jay-Z"), return articles that mention either of them using OR.
- If the user asks which articles contain a description, use a.description IS NOT NULL.
- If the user asks which articles lack a description field, use a.description IS NULL.
- If the query asks for general music articles, use keywords like "music", "song", "album" in title, description, or full_text.
- Always return the 5 most recent articles if the user asks for "latest news" or "recent articles".
- For ANY query that returns article information, ALWAYS include the URL by matching the HAS_URL relationship and return u.url AS source_url.
- When filtering by author, always return the author name as au.name AS author so the response can identify who wrote the articles.
- If the user asks for "source url?", "url?", "link?", or "source?" as a follow-up, look for the most recently mentioned article in the conversation history and return its URL.
- For follow-up queries about article metadata, use the conversation context to identify which article the user is referring to.
- For publication date queries, use a.publication_date directly.
- Do NOT hallucinate results or return text. Return only the Cypher query.`

// dateCypherPrompt is the synthesis variant tuned for date and
// aggregation phrasing.
const dateCypherPrompt = `You are an expert at translating natural language into Cypher queries for a news database.

Use this schema to answer the user's question:

%s

%s

` + cypherRules + `

` + cypherSharedInstructions + `
- If the user asks for a specific year like "from 2025", filter articles where a.publication_date.year = 2025.

Now write the Cypher query for this:

Question:
%s

Cypher query:`

// generalCypherPrompt is the synthesis variant tuned for entity and topic
// phrasing.
const generalCypherPrompt = `You are an expert at translating natural language into Cypher queries for a news database.

Use this schema to answer the user's question:

%s

%s

` + cypherRules + `

` + cypherSharedInstructions + `
- If the question mentions legal issues, scandals, or lawsuits about an artist, search for articles where the title, description, or full_text contains the artist's name and keywords like "lawsuit", "arrest", "legal", "scandal", "controversy", "court".

Now write the Cypher query for this:

Question:
%s

Cypher query:`

const answerPrompt = `You are an AI-powered news assistant. Your job is to interpret the query and format the already-fetched result accordingly. Do not attempt to re-query or invent any new data. Only use the data provided in the result.

%s

Instructions:
- Do NOT try to re-fetch data. Only format and explain the given Result below.
- Respect the user's intent in the question.
- Use the Result section to form your answer. Do not go beyond this data.
- Consider the conversation history when providing context and references.
- Format your response exactly how the user asks (e.g., summary, detailed info, bullet list, structured text, etc.).
- If the user asks for:
  - "List articles" -> List the article titles, with authors and publication dates if the user asks for them.
  - "Summary of article(s)" -> Briefly summarize the content of each article in a 3-4 sentence paragraph, with bullet points if required.
  - "Detailed info", "More info", "Full description", "Tell me more", "In-depth article" ->
      Expand the content into a full, richly detailed explanation of at least 500 to 1000 words.
      Discuss the main topic, background, key takeaways, author perspectives, and implications.
      Write in clear paragraphs with headings and bullet points where structure helps.
  - "Schema-related info" -> Extract and explain schema details present in the result.
- ALWAYS include the source URL when it is available in the result data, regardless of the query type.
- When mentioning an article, always provide the URL if it exists in the result.
- Do not hallucinate or add information that is not in the result.

Important Rule:
- You MUST NOT use any external world knowledge.
- Only answer based on the given database or embedding data.
- If the query is outside this scope, reply: "I only assist with music-related questions."

Question: %s
Source: %s
Result: %s

Answer:`

func historyContext(historyText string) string {
	if historyText == "" {
		return "No previous conversation history."
	}
	return "Conversation History:\n" + historyText + "\n"
}
