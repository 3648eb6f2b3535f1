package registry

// Builtin returns the registry compiled into the binary.
func Builtin() *Registry {
	r, err := New(builtinSpecs, builtinTemplates, DefaultTemplateID)
	if err != nil {
		panic("registry: invalid builtin registry: " + err.Error())
	}
	return r
}

// BuiltinSpecs returns a copy of the compiled-in block specs.
func BuiltinSpecs() []BlockSpec { return append([]BlockSpec(nil), builtinSpecs...) }

// BuiltinTemplates returns a copy of the compiled-in templates.
func BuiltinTemplates() []TemplateSpec { return append([]TemplateSpec(nil), builtinTemplates...) }

var builtinSpecs = []BlockSpec{
	{
		Type:        "persona",
		Title:       "Persona Block",
		Description: "Define the role, expertise, and characteristics the AI should embody.",
		BestPractices: []string{
			"Be specific about expertise level and domain knowledge",
			"Define clear behavioral characteristics",
			"Include relevant professional standards or methodologies",
			"Specify any ethical guidelines or principles to follow",
			"Consider the relationship dynamic with the user",
			"Align expertise with the task requirements",
		},
		Examples: []string{
			"Expert software architect with 15+ years experience in distributed systems",
			"Professional editor following Chicago Manual of Style guidelines",
			"Patient, supportive teaching assistant specializing in mathematics",
			"Data scientist with expertise in statistical analysis and visualization",
		},
		Placeholder: "Define the role, expertise level, and key characteristics...",
	},
	{
		Type:        "context",
		Title:       "Context Block",
		Description: "Provide essential background information and situational context.",
		BestPractices: []string{
			"Start with the most relevant information first",
			"Include necessary technical details or specifications",
			"Provide historical context if relevant",
			"Define any domain-specific terminology",
			"Specify the current state or situation",
			"Include any relevant constraints or limitations",
			"Mention related work or previous attempts",
			"Clarify the scope of the context",
		},
		Examples: []string{
			"We're developing a React application with TypeScript and need to implement...",
			"Previous analysis showed that customer churn increased by 15% after...",
			"The legacy system uses Java 8 and Oracle Database 12c...",
			"Our team has already attempted to solve this by...",
		},
		Placeholder: "Provide relevant background information and context...",
	},
	{
		Type:        "audience",
		Title:       "Audience Block",
		Description: "Specify the target audience for the AI's response.",
		BestPractices: []string{
			"Define the audience's expertise level (e.g., 'technical experts', 'general public', '5th graders').",
			"Consider their background, needs, and potential perspective.",
			"Specify the context in which the audience will receive the information.",
			"Tailor the language complexity and terminology accordingly.",
			"Think about what the audience already knows and what they need to learn.",
		},
		Examples: []string{
			"The audience consists of non-technical stakeholders.",
			"Explain this concept to a high school student studying biology.",
			"Write for experienced software developers familiar with cloud infrastructure.",
			"The readers are potential investors with financial backgrounds.",
			"This is for internal team members who understand our project jargon.",
		},
		Placeholder: "Define who will be reading or receiving this content...",
	},
	{
		Type:        "task",
		Title:       "Task Block",
		Description: "Clearly define what needs to be accomplished.",
		BestPractices: []string{
			"Use clear, actionable verbs (analyze, create, optimize, etc.)",
			"Break complex tasks into smaller steps",
			"Specify the expected outcome",
			"Include acceptance criteria",
			"Define the scope clearly",
			"Indicate priority or importance",
			"Specify any dependencies",
			"Include success metrics if applicable",
		},
		Examples: []string{
			"Analyze the provided code for potential security vulnerabilities...",
			"Create a step-by-step migration plan for upgrading from...",
			"Optimize the following database query to improve performance...",
			"Design a RESTful API endpoint that handles...",
		},
		Placeholder: "Specify what needs to be done and the desired outcome...",
	},
	{
		Type:        "tone",
		Title:       "Tone Block",
		Description: "Define the desired tone, style, or voice of the response.",
		BestPractices: []string{
			"Use descriptive adjectives (e.g., 'formal', 'informal', 'enthusiastic', 'neutral', 'humorous', 'serious', 'empathetic').",
			"Specify if a particular writing style should be adopted (e.g., 'academic', 'conversational', 'journalistic').",
			"Consider the desired emotional impact on the audience.",
			"Ensure the tone is consistent with the defined Persona and Audience.",
			"Provide examples of the desired tone if possible.",
		},
		Examples: []string{
			"Write in a friendly, encouraging, and slightly informal tone.",
			"Adopt a formal, professional, and objective style.",
			"Use a witty and humorous voice.",
			"The tone should be empathetic and understanding.",
			"Maintain a neutral and informative tone throughout the response.",
		},
		Placeholder: "Specify the desired tone, style, and voice for the response...",
	},
	{
		Type:        "format",
		Title:       "Format Block",
		Description: "Define the structure and presentation of the response.",
		BestPractices: []string{
			"Specify the desired output structure clearly",
			"Include section headers or markers",
			"Define any required formatting (markdown, JSON, etc.)",
			"Specify length requirements",
			"Include any templating requirements",
			"Define the level of detail needed",
			"Specify any required metadata",
			"Include examples of the desired format",
		},
		Examples: []string{
			"Return a JSON object with keys: 'summary', 'steps', 'recommendations'",
			"Format the response in markdown with H2 headers for each section",
			"Provide a numbered list of steps, each with a description and example",
			"Structure the analysis as: Context → Problem → Solution → Implementation",
		},
		Placeholder: "Define how the response should be structured and formatted...",
	},
	{
		Type:        "constraints",
		Title:       "Constraints Block",
		Description: "Define specific rules, limitations, or requirements not covered by format.",
		BestPractices: []string{
			"List things the AI *should not* do or include.",
			"Specify technical limitations or requirements (e.g., 'Use only standard Python libraries').",
			"Include performance considerations if relevant.",
			"Mention any regulatory, compliance, or ethical guidelines.",
			"Define quality standards or specific keywords to include/exclude.",
			"Set boundaries on the scope if not fully covered in Task.",
		},
		Examples: []string{
			"Do not include any personal opinions or subjective statements.",
			"The code must follow the Python PEP 8 style guide.",
			"Avoid using technical jargon where possible.",
			"Ensure the response is compliant with GDPR regulations.",
			"Limit the explanation to the core concepts, do not go into advanced details.",
			"Response must be factually accurate and verifiable.",
		},
		Placeholder: "List any limitations, requirements, or specific guidelines the AI should follow...",
	},
	{
		Type:        "examples",
		Title:       "Examples Block (Few-Shot)",
		Description: "Provide specific input/output examples to guide the model's behavior and style through few-shot prompting.",
		BestPractices: []string{
			"Use clear input/output pairs that demonstrate the desired task and format.",
			"Include multiple examples (2-5) for better guidance (few-shot prompting).",
			"Ensure examples are consistent with all other instructions.",
			"Show variety if the task involves different scenarios.",
			"Include edge cases or tricky scenarios if applicable.",
			"Keep examples concise but illustrative.",
			"Format consistently (e.g., 'Input: X, Output: Y' pattern).",
			"Ensure examples align with the specified tone and audience.",
		},
		Examples: []string{
			"Input: 'Summarize: The weather is sunny.' Output: 'Report: Clear skies.'",
			"Code: 'def add(a,b): return a+b' Analysis: 'Function `add` lacks type hints and parameter documentation.'",
			"Topic: Photosynthesis, Audience: Child. Output: 'Plants use sunlight like food to grow!'",
			"Input: 'Complex topic', Audience: Expert. Output: 'Detailed technical explanation'",
			"Input: 'Same topic', Audience: Beginner. Output: 'Simplified explanation with analogies'",
		},
		Placeholder: "Add input/output examples to guide the AI's response style and format. Use consistent patterns like 'Input: X, Output: Y'.",
	},
}

var builtinTemplates = []TemplateSpec{
	{
		ID:          "general",
		Name:        "General Purpose",
		Description: "A versatile template for most AI prompting needs",
		Blocks: []BlockRef{
			{Type: "persona", Label: "AI Persona (Optional)", Enabled: true},
			{Type: "audience", Label: "Target Audience (Optional)", Enabled: true},
			{Type: "tone", Label: "Desired Tone (Optional)", Enabled: true},
			{Type: "context", Label: "Context", Enabled: true},
			{Type: "task", Label: "Task", Enabled: true},
			{Type: "constraints", Label: "Constraints / Rules", Enabled: true},
			{Type: "format", Label: "Output Format", Enabled: true},
			{Type: "examples", Label: "Examples (Few-Shot, Optional)", Enabled: true},
		},
	},
	{
		ID:          "reasoning",
		Name:        "Complex Reasoning",
		Description: "Optimized for problem-solving and analytical tasks",
		Blocks: []BlockRef{
			{Type: "context", Label: "Problem Statement", Enabled: true},
			{Type: "task", Label: "Analysis Requirements", Enabled: true,
				Content: "Please analyze this problem using the following approach:\n1. Break down the key components\n2. Identify potential solutions\n3. Evaluate trade-offs\n4. Recommend the best approach"},
			{Type: "constraints", Label: "Analysis Constraints", Enabled: true,
				Content: "Consider:\n- Feasibility of implementation\n- Resource limitations\n- Time constraints\n- Potential risks"},
			{Type: "format", Label: "Analysis Structure", Enabled: true,
				Content: "Please structure your analysis as follows:\n1. Problem Analysis\n2. Key Factors\n3. Potential Solutions\n4. Trade-off Analysis\n5. Recommended Approach\n6. Implementation Steps"},
		},
	},
	{
		ID:          "creative",
		Name:        "Creative Writing",
		Description: "For storytelling, content creation, and creative tasks",
		Blocks: []BlockRef{
			{Type: "context", Label: "Creative Brief", Enabled: true},
			{Type: "task", Label: "Creative Task", Enabled: true},
			{Type: "examples", Label: "Style Examples", Enabled: true},
			{Type: "constraints", Label: "Creative Guidelines", Enabled: true},
			{Type: "format", Label: "Content Structure", Enabled: true},
		},
	},
	{
		ID:          "technical",
		Name:        "Technical Documentation",
		Description: "For creating technical guides, documentation, and explanations",
		Blocks: []BlockRef{
			{Type: "context", Label: "Technical Context", Enabled: true},
			{Type: "task", Label: "Documentation Scope", Enabled: true},
			{Type: "examples", Label: "Code Examples", Enabled: true},
			{Type: "constraints", Label: "Technical Requirements", Enabled: true,
				Content: "Please ensure:\n- Use of precise technical terminology\n- Clear code examples where relevant\n- Step-by-step instructions\n- Error handling coverage"},
			{Type: "format", Label: "Documentation Structure", Enabled: true,
				Content: "Structure the documentation as follows:\n1. Overview\n2. Prerequisites\n3. Step-by-step Guide\n4. Code Examples\n5. Troubleshooting\n6. References"},
		},
	},
	{
		ID:          "code-generation",
		Name:        "Code Generation",
		Description: "Specialized template for generating code with specific requirements and context",
		Blocks: []BlockRef{
			{Type: "persona", Label: "Development Role", Enabled: true,
				Content:     "You are an expert software developer with deep knowledge of best practices, design patterns, and modern development techniques.",
				Placeholder: "Define the development expertise needed..."},
			{Type: "context", Label: "Technical Context", Enabled: true,
				Placeholder: "Describe the project context, existing codebase, frameworks, and dependencies..."},
			{Type: "task", Label: "Implementation Requirements", Enabled: true,
				Placeholder: "Specify what needs to be implemented, including functional requirements and acceptance criteria..."},
			{Type: "constraints", Label: "Technical Constraints", Enabled: true,
				Placeholder: "List technical constraints, required patterns, coding standards, and limitations..."},
			{Type: "examples", Label: "Code Examples", Enabled: true,
				Placeholder: "Provide example code snippets showing desired patterns or similar implementations..."},
			{Type: "format", Label: "Code Structure", Enabled: true,
				Content: "Please provide the code with:\n1. Required imports/dependencies\n2. Clear function/class documentation\n3. Type definitions\n4. Implementation\n5. Usage examples\n6. Error handling"},
		},
	},
	{
		ID:          "data-analysis",
		Name:        "Data Analysis",
		Description: "Template for data analysis tasks, insights generation, and statistical interpretation",
		Blocks: []BlockRef{
			{Type: "persona", Label: "Analyst Role", Enabled: true,
				Content:     "You are an expert data analyst with strong statistical knowledge and experience in deriving actionable insights.",
				Placeholder: "Define the type of analysis expertise needed..."},
			{Type: "context", Label: "Data Context", Enabled: true,
				Placeholder: "Describe the data (structure, source, timeframe, key variables) and any relevant background information..."},
			{Type: "task", Label: "Analysis Goals", Enabled: true,
				Placeholder: "Specify the analysis objectives, key questions to answer, and desired insights..."},
			{Type: "audience", Label: "Target Audience", Enabled: true,
				Placeholder: "Define who will use these insights (e.g., technical team, executives, stakeholders)..."},
			{Type: "constraints", Label: "Analysis Parameters", Enabled: true,
				Placeholder: "Specify statistical methods to use/avoid, confidence levels, assumptions to consider..."},
			{Type: "format", Label: "Output Structure", Enabled: true,
				Content: "Please structure the analysis as follows:\n1. Key Findings Summary\n2. Detailed Analysis\n3. Statistical Methods Used\n4. Data Limitations\n5. Recommendations\n6. Visualizations Description"},
		},
	},
	{
		ID:          "email-drafting",
		Name:        "Email Drafting",
		Description: "Template for crafting professional and effective emails",
		Blocks: []BlockRef{
			{Type: "context", Label: "Email Context", Enabled: true,
				Placeholder: "Describe the situation, background, and any relevant history..."},
			{Type: "audience", Label: "Recipients", Enabled: true,
				Placeholder: "Describe the recipient(s) and their role/relationship..."},
			{Type: "task", Label: "Email Purpose", Enabled: true,
				Placeholder: "Specify the main objective of the email (inform, request, follow-up, etc.)..."},
			{Type: "tone", Label: "Email Tone", Enabled: true,
				Placeholder: "Specify the tone (formal, friendly, urgent, etc.)..."},
			{Type: "constraints", Label: "Key Points", Enabled: true,
				Placeholder: "List the main points that must be covered in the email..."},
			{Type: "format", Label: "Email Structure", Enabled: true,
				Content: "Please structure the email with:\n1. Subject Line\n2. Greeting\n3. Opening Paragraph\n4. Main Content\n5. Call to Action\n6. Closing\n7. Signature"},
			{Type: "examples", Label: "Similar Examples", Enabled: true,
				Placeholder: "Provide examples of similar emails or preferred phrasings..."},
		},
	},
	{
		ID:          "structured-reasoning",
		Name:        "Structured Reasoning",
		Description: "Template for complex problem-solving using chain-of-thought and step-by-step reasoning",
		Blocks: []BlockRef{
			{Type: "context", Label: "Initial Problem", Enabled: true,
				Placeholder: "Describe the problem or scenario that needs analysis..."},
			{Type: "task", Label: "Reasoning Steps Required", Enabled: true,
				Content:     "Please solve this problem using the following steps:\n1. Understand key information\n2. Break down the problem\n3. Consider relevant principles\n4. Apply logical reasoning\n5. Validate assumptions\n6. Draw conclusions",
				Placeholder: "List the specific reasoning steps needed..."},
			{Type: "constraints", Label: "Reasoning Constraints", Enabled: true,
				Content:     "When solving this problem:\n- Show all work and intermediate steps\n- Explain the rationale for each step\n- Highlight key assumptions\n- Note any limitations\n- Consider edge cases",
				Placeholder: "Specify any constraints or requirements for the reasoning process..."},
			{Type: "examples", Label: "Similar Problems", Enabled: true,
				Placeholder: "Provide examples of similar problems and their step-by-step solutions..."},
			{Type: "format", Label: "Solution Format", Enabled: true,
				Content: "Structure the solution as follows:\n1. Problem Understanding\n2. Key Information Extracted\n3. Step-by-Step Reasoning\n4. Intermediate Results\n5. Final Conclusion\n6. Confidence Level\n7. Alternative Approaches Considered"},
		},
	},
	{
		ID:          "summarization",
		Name:        "Text Summarization",
		Description: "Template for generating concise, accurate summaries of longer texts",
		Blocks: []BlockRef{
			{Type: "context", Label: "Source Text", Enabled: true,
				Placeholder: "Paste the text to be summarized..."},
			{Type: "task", Label: "Summarization Goals", Enabled: true,
				Placeholder: "Specify what aspects to focus on, desired length, and key points to include..."},
			{Type: "audience", Label: "Target Audience", Enabled: true,
				Placeholder: "Define who will read this summary and their knowledge level..."},
			{Type: "constraints", Label: "Summary Requirements", Enabled: true,
				Placeholder: "List requirements like word count, style, key terms to include/exclude..."},
			{Type: "format", Label: "Summary Structure", Enabled: true,
				Content: "Please structure the summary as follows:\n1. Main Idea (1-2 sentences)\n2. Key Points (3-5 bullets)\n3. Supporting Details\n4. Conclusion\n5. Source Attribution"},
		},
	},
}
