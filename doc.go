// Package gate decides, on every navigation, whether the current visitor may
// reach a page of a role partitioned application and where to send them if not.
//
// Storage:
//   - The visitor's tokens live in a Storage partitioned by Lifetime. Persistent
//     values survive browser restarts, Ephemeral values last for the browser
//     session. CookieStorage maps these onto expiring and session cookies;
//     MemoryStorage keeps them in process.
//   - TokenStore.Persist picks the lifetime from the remember flag. Read prefers
//     the Persistent token. Clear removes every known key from both lifetimes.
//
// Decisions:
//   - AuthState treats a token as valid when its payload decodes and its exp is
//     in the future; an expired token is cleared the first time it is seen.
//     Signatures are never verified here.
//   - RoleResolver normalizes the Role or role claim into Admin, Publisher or
//     Unknown. Unknown is never an error.
//   - Guard evaluates a Policy for a Navigation and returns Allow or RedirectTo.
//     Non interactive navigations, such as a prerender pass, are always allowed.
//
// Gate composes these over one Storage; build one per request.
package gate
