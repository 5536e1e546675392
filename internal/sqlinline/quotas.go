package sqlinline

const QCheckGenerationLimit = `--sql 2d326fb8-b0b6-41fe-be8b-9a99b7996bfd
select allowed
from check_generation_limit($1::text, $2::text);
`
