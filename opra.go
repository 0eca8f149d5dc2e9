// Package opra locates municipal rent control ordinances, indexes them for
// semantic retrieval, decides which categories of public records they
// implicate, and drafts Open Public Records Act requests for those records.
//
// This package contains domain types, pure domain logic and the interfaces
// implemented by subpackages, following Ben Johnson's Standard Package
// Layout. Implementations live in subdirectories named after their primary
// dependency (e.g., sqlite/, gemini/, tavily/).
package opra
