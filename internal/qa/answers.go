package qa

// GenericAnswer is used when no provider produced an answer.
const GenericAnswer = "This is a complex legal question that requires careful consideration of your specific circumstances. I recommend consulting with a qualified startup attorney who can provide personalized advice based on your situation. However, I can provide some general guidance on this topic..."

const systemPrompt = `You are a legal assistant for startup founders. Answer in plain English, in a few short paragraphs.
Name the documents or filings involved where relevant. You are not a lawyer: close by recommending that the founder confirm important decisions with a qualified startup attorney.`

// examples are the popular questions offered to new users, in display order.
var examples = []string{
	"How do I issue founder stock?",
	"What does pro rata mean in a SAFE?",
	"What are the key terms in a Series A?",
	"How do I structure equity for co-founders?",
	"What is a vesting schedule?",
	"What should I include in an NDA?",
}

var answerBank = map[string]string{
	"How do I issue founder stock?": "Issuing founder stock involves several key steps: 1) Determine the total number of authorized shares, 2) Set the par value (typically $0.001), 3) Execute a stock purchase agreement with each founder, 4) File an 83(b) election within 30 days if shares are subject to vesting, 5) Update your cap table and corporate records. Consider consulting with a startup attorney to ensure proper documentation and compliance with securities laws.",

	"What does pro rata mean in a SAFE?": "Pro rata rights in a SAFE (Simple Agreement for Future Equity) give the investor the right to participate in future funding rounds to maintain their ownership percentage. When you raise a Series A, SAFE holders with pro rata rights can invest additional money to prevent dilution. This is particularly important for early investors who want to maintain their stake as the company grows and raises more capital.",

	"What are the key terms in a Series A?": "Key Series A terms include: 1) Valuation (pre-money and post-money), 2) Liquidation preferences (usually 1x non-participating), 3) Anti-dilution provisions (weighted average), 4) Board composition, 5) Voting rights, 6) Drag-along and tag-along rights, 7) Information rights, 8) Pro rata participation rights, 9) Founder vesting acceleration triggers, 10) Employee option pool sizing (typically 10-20%).",

	"How do I structure equity for co-founders?": "Co-founder equity is usually split according to expected future contribution rather than past work. Common practice: 1) Agree the split early and in writing, 2) Put every founder's shares on a vesting schedule (four years with a one-year cliff is standard), 3) Reserve an option pool for employees before outside investment, 4) Have each founder assign their IP to the company, 5) File 83(b) elections for restricted stock. Equal splits are common but should be a deliberate choice, not a default.",

	"What is a vesting schedule?": "A vesting schedule determines when shares or options become fully owned. The most common startup schedule is four years with a one-year cliff: nothing vests during the first year, 25% vests at the one-year anniversary, and the remainder vests monthly over the next three years. If someone leaves before fully vesting, the company can repurchase or cancel the unvested portion. Acceleration clauses can speed up vesting on an acquisition (single trigger) or on an acquisition followed by termination (double trigger).",

	"What should I include in an NDA?": "A solid NDA covers: 1) A clear definition of confidential information and its exclusions (public information, independently developed material), 2) Whether it is mutual or one-way, 3) Permitted uses and who may receive the information, 4) The term of the confidentiality obligation, 5) Return or destruction of materials when the relationship ends, 6) Remedies, including injunctive relief, 7) Governing law and jurisdiction. Keep it short; most investors will not sign NDAs, so use them with partners, contractors and acquirers.",
}
