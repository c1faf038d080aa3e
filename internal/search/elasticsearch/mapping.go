package elasticsearch

// DefaultIndexName is used when no index name is configured.
const DefaultIndexName = "storefront_products"

// indexMapping analyzes the Russian and Kyrgyz titles with the built-in
// russian analyzer and the English title with the english analyzer.
const indexMapping = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "analyzer": {
        "autocomplete_analyzer": {
          "type": "custom",
          "tokenizer": "autocomplete_tokenizer",
          "filter": ["lowercase"]
        },
        "autocomplete_search": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase"]
        }
      },
      "tokenizer": {
        "autocomplete_tokenizer": {
          "type": "edge_ngram",
          "min_gram": 2,
          "max_gram": 20,
          "token_chars": ["letter", "digit"]
        }
      }
    }
  },
  "mappings": {
    "properties": {
      "id":          { "type": "keyword" },
      "title_ru":    { "type": "text", "analyzer": "russian", "fields": { "autocomplete": { "type": "text", "analyzer": "autocomplete_analyzer", "search_analyzer": "autocomplete_search" } } },
      "title_en":    { "type": "text", "analyzer": "english" },
      "title_kg":    { "type": "text", "analyzer": "russian" },
      "description": { "type": "text", "analyzer": "russian" },
      "slug":        { "type": "keyword" },
      "category_id": { "type": "keyword" },
      "created_at":  { "type": "date" }
    }
  }
}`
