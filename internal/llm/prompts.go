package llm

const generatePrompt = `You are a portfolio analyst. Answer the question using ONLY the
document excerpts below. Cite nothing that is not in the excerpts. If the excerpts do not
contain the answer, say so plainly.

Question: %s

Excerpts:
%s

Respond with ONLY the answer text. No preamble, no formatting.`

const intentPrompt = `Classify the intent of this question about a portfolio of products,
risks, dependencies, actions and outcomes.

Question: %s

Intent must be one of:
- FACTUAL: asks about the current state of something
- HISTORICAL: asks what happened over time
- CAUSAL: asks why something happened or what caused it
- MIXED: combines more than one of the above, or compares things
- UNKNOWN: cannot be determined

Respond with EXACTLY one line in this format, nothing else:
INTENT|CONFIDENCE|REASONING

where CONFIDENCE is a number between 0 and 1. Example:
CAUSAL|0.85|The question asks for the cause of a failure.`
