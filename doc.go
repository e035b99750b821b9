// Package userapi implements a small user-management backend: CRUD over a
// single user entity guarded by HS256 bearer tokens.
//
// Components:
//   - Users is the persistence contract (create, find by id/email, update,
//     delete) backed by Bun. Email uniqueness and write atomicity are enforced
//     at the store, not in the service layer.
//   - UserService applies existence checks and merge-on-update semantics on
//     top of the store, turning absent rows into explicit not-found errors.
//   - TokenService is the credential strategy: it signs tokens tied to a user
//     identity and validates presented ones (signature + expiry).
//   - middleware/jwtware is the route guard. It delegates verification to the
//     TokenService and attaches the resulting claims to the request before any
//     business logic runs.
//
// Configuration is built once from the environment (see LoadConfig) and is
// passed by reference into constructors; nothing reads ambient state after
// startup.
package userapi
