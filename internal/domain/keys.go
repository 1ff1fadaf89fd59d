package domain

// KeyPrefix namespaces every Redis key and FT index owned by this service.
const KeyPrefix = "auditscope:"
