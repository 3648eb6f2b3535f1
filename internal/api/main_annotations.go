// @title           blockprompt API
// @version         1.0
// @description     Build structured AI prompts from reusable blocks, with LLM-assisted content generation.
// @BasePath        /api/v1
package api
