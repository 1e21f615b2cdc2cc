package export

// prdTemplate is the fixed section layout appended to every PRD generation
// prompt. Section order mirrors the structured document's ten sections.
const prdTemplate = `
Generate a comprehensive Product Requirements Document (PRD) in markdown format using these exact sections in this order:

# Product Requirements Document

## Executive Summary
Write a brief overview of what we're building and why.

## Problem Statement
What problem are we solving? What pain points exist? *Pain, opportunity, urgency.*

## Goals & Objectives
What are we trying to achieve? What success looks like?
| Type         | Description                                          |
|--------------|------------------------------------------------------|
| **Business** | e.g. "+20 % activated teams within 14 days"          |
| **User**     | e.g. "Get weekly usage insights without leaving app" |
| **Non-Goals**| Explicitly out of scope                              |

## Target Users & Personas
Who will use this product? What are their characteristics?
"As a **[persona]**, I want to **[do X]** so I can **[achieve Y]**."

## User Stories
Key user journeys and use cases in "As a [user], I want [goal] so that [benefit]" format.
1. First impression / entry point
2. Core flow
3. Empty / error / success states
4. Permissions / access roles
5. Mobile / a11y considerations

## Features & Requirements
Detailed description of features and functionality we need to build.

## Technical Considerations
High-level technical requirements, constraints, or architecture notes.
*APIs, data model changes, privacy, scalability, migrations, 3rd-party tools.*

## Success Metrics
How will we measure if this is successful? What KPIs matter?
| Metric            | Target | Time Window |
|-------------------|--------|-------------|
| **Primary**       |        |             |
| Secondary         |        |             |
| CX / Qual Signals |        |             |

## Timeline & Milestones
| Phase   | Scope / Deliverable | Owner | ETA |
|---------|---------------------|-------|-----|
| MVP     |                     |       |     |
| Beta    |                     |       |     |
| GA      |                     |       |     |
| Future  |                     |       |     |

## Out of Scope
What we are NOT building in this version.

IMPORTANT: Do NOT include any reviewer signature tables or signature checklists. In the Problem Statement section, do NOT use boxes, borders, or tables — just use plain paragraphs for the content.`
