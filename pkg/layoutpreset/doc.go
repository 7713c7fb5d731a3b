// Package layoutpreset lets an authoring host compose page layouts from
// reusable preset fragments.
//
// A preset fragment is any content node whose type derives from the base
// preset type. Its layout contains an anchor rendering placed in a slot whose
// last segment is the anchor key ("partiallayoutpreset"); the anchor and every
// rendering placed below it form the fragment payload. The slot the author
// dropped the anchor into is the slot the fragment is bound to.
//
// The package exposes a single Service with two host entry points:
//
//   - ResolveAllowedFragments answers "which fragments may be offered in this
//     slot of this page".
//   - InsertRendering copies a fragment payload into a page slot, minting new
//     instance ids and repairing slot paths that reference the renamed
//     renderings. Non-preset items are handed to the configured Inserter.
//
// Repositories (memory, Postgres) live under repo/, the layout document codec
// under layout/, and configuration under config/.
package layoutpreset
