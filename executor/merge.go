package executor

// deepMerge recursively merges src into dst, key by key. Sub-objects are
// merged in place; scalar and list values from src overwrite dst (lists
// are replaced, never concatenated). Planning guarantees parallel
// siblings never write the same key for the same entity, so this never
// has to resolve a genuine conflict.
func deepMerge(dst, src ResultMap) {
	for k, v := range src {
		existing, hasExisting := dst[k]
		if hasExisting {
			if existingMap, ok := asResultMap(existing); ok {
				if srcMap, ok := asResultMap(v); ok {
					deepMerge(existingMap, srcMap)
					continue
				}
			}
		}
		dst[k] = v
	}
}

// asResultMap adapts either a ResultMap or a plain map[string]any (as
// produced by a DataSource reply or json-decoded fixture) to ResultMap.
func asResultMap(v any) (ResultMap, bool) {
	switch m := v.(type) {
	case ResultMap:
		return m, true
	case map[string]any:
		return ResultMap(m), true
	default:
		return nil, false
	}
}
